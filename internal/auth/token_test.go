package auth

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestIssueToken_Format(t *testing.T) {
	before := time.Now().UnixMilli()
	token := IssueToken("USR_9")
	after := time.Now().UnixMilli()

	if !strings.HasPrefix(token, TokenNamespace+"_USR_9_") {
		t.Fatalf("token %q does not match the structural format", token)
	}

	ts := strings.TrimPrefix(token, TokenNamespace+"_USR_9_")
	millis, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		t.Fatalf("token timestamp %q is not numeric: %v", ts, err)
	}
	if millis < before || millis > after {
		t.Errorf("token timestamp %d outside issue window [%d, %d]", millis, before, after)
	}
}

func TestIssueToken_SameTickCollides(t *testing.T) {
	// Tokens issued within the same millisecond are expected to collide;
	// the issuer makes no uniqueness promise beyond timestamp granularity.
	a := IssueToken("USR_1")
	b := IssueToken("USR_1")

	tsA := a[strings.LastIndex(a, "_")+1:]
	tsB := b[strings.LastIndex(b, "_")+1:]
	if tsA == tsB && a != b {
		t.Error("tokens with identical timestamps should be identical")
	}
}
