package auth

import (
	"fmt"
	"time"
)

// TokenNamespace is the fixed prefix of every issued session token.
const TokenNamespace = "smartbee"

// IssueToken mints an opaque session token bound to an account.
//
// Structural format: smartbee_{account_id}_{unix_millis}. The token carries
// no cryptographic guarantee, no expiry, and no revocation path; uniqueness
// relies on timestamp granularity, so two tokens issued for the same
// account within the same millisecond collide. Consumers must treat the
// token as opaque.
func IssueToken(accountID string) string {
	return fmt.Sprintf("%s_%s_%d", TokenNamespace, accountID, time.Now().UnixMilli())
}
