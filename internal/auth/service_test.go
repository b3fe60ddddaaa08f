package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCreate_MissingFields(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.Create(context.Background(), CreateAccountInput{
		GivenName: "Ana",
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"apellido", "comuna", "clave", "rol"} {
		if !strings.Contains(verr.Message, field) {
			t.Errorf("validation message %q does not name field %q", verr.Message, field)
		}
	}
	if strings.Contains(verr.Message, "nombre,") || strings.HasSuffix(verr.Message, "nombre") {
		t.Errorf("validation message %q names a field that was supplied", verr.Message)
	}
}

func TestCreate_UnknownRole(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.Create(context.Background(), CreateAccountInput{
		GivenName: "Ana", FamilyName: "Soto", Locality: "Chillán",
		Secret: "s3cret", Role: "SUPERUSER",
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Message, "SUPERUSER") {
		t.Errorf("error %q does not name the invalid role code", verr.Message)
	}
}

func TestCreate_GeneratesID(t *testing.T) {
	svc, _ := testService(t)

	account := mustCreate(t, svc, CreateAccountInput{
		GivenName: "Ana", FamilyName: "Soto", Locality: "Chillán",
		Secret: "s3cret", Role: "ADM",
	})

	if !strings.HasPrefix(account.ID, "USR_") {
		t.Errorf("generated id %q lacks the USR_ prefix", account.ID)
	}
	if !account.Active {
		t.Error("active should default to true")
	}
	if account.PasswordHash == "s3cret" {
		t.Error("secret stored as plaintext")
	}
	if account.RoleName == "" {
		t.Error("role name should be filled from the role table")
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	mustCreate(t, svc, CreateAccountInput{
		ID: "USR_DUP", GivenName: "Ana", FamilyName: "Soto",
		Locality: "Chillán", Secret: "s3cret", Role: "ADM",
	})

	_, err := svc.Create(ctx, CreateAccountInput{
		ID: "USR_DUP", GivenName: "Beto", FamilyName: "Rojas",
		Locality: "Quillón", Secret: "0tr0", Role: "ADM",
	})

	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if !strings.Contains(cerr.Message, "USR_DUP") {
		t.Errorf("conflict message %q does not name the id", cerr.Message)
	}
}

func TestCreate_IDNeverReused(t *testing.T) {
	// A soft-deleted account still blocks its id forever.
	svc, _ := testService(t)
	ctx := context.Background()

	mustCreate(t, svc, CreateAccountInput{
		ID: "USR_GONE", GivenName: "Ana", FamilyName: "Soto",
		Locality: "Chillán", Secret: "s3cret", Role: "ADM",
	})
	if err := svc.SoftDelete(ctx, "USR_GONE"); err != nil {
		t.Fatalf("SoftDelete() failed: %v", err)
	}

	_, err := svc.Create(ctx, CreateAccountInput{
		ID: "USR_GONE", GivenName: "Beto", FamilyName: "Rojas",
		Locality: "Quillón", Secret: "0tr0", Role: "ADM",
	})

	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError for reused id, got %v", err)
	}
}

func TestLogin_EndToEnd(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	account := mustCreate(t, svc, CreateAccountInput{
		GivenName: "Ana", FamilyName: "Soto", Locality: "Chillán",
		Secret: "s3cret", Role: "ADM",
	})

	token, got, err := svc.Login(ctx, LoginInput{Identifier: account.ID, Secret: "s3cret"})
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if !strings.HasPrefix(token, TokenNamespace+"_"+account.ID+"_") {
		t.Errorf("token %q does not match the structural format", token)
	}
	if got.ID != account.ID {
		t.Errorf("login returned account %s, want %s", got.ID, account.ID)
	}

	summary := got.Summary()
	if summary.Role != "ADM" || summary.Active != 1 {
		t.Errorf("summary = %+v, want rol ADM, activo 1", summary)
	}
}

func TestLogin_GenericFailure(t *testing.T) {
	// Resolver miss and password mismatch must be indistinguishable.
	svc, _ := testService(t)
	ctx := context.Background()

	account := mustCreate(t, svc, CreateAccountInput{
		GivenName: "Ana", FamilyName: "Soto", Locality: "Chillán",
		Secret: "s3cret", Role: "ADM",
	})

	_, _, errMiss := svc.Login(ctx, LoginInput{Identifier: "USR_NOBODY", Secret: "s3cret"})
	_, _, errWrong := svc.Login(ctx, LoginInput{Identifier: account.ID, Secret: "wrong"})

	if !errors.Is(errMiss, ErrInvalidCredentials) {
		t.Errorf("resolver miss: got %v, want ErrInvalidCredentials", errMiss)
	}
	if !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Errorf("password mismatch: got %v, want ErrInvalidCredentials", errWrong)
	}
	if errMiss.Error() != errWrong.Error() {
		t.Error("the two failure modes must produce identical errors")
	}
}

func TestLogin_Validation(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	var verr *ValidationError

	_, _, err := svc.Login(ctx, LoginInput{Identifier: "USR_1"})
	if !errors.As(err, &verr) {
		t.Errorf("missing secret: got %v, want ValidationError", err)
	}

	_, _, err = svc.Login(ctx, LoginInput{Secret: "s3cret", GivenName: "Ana"})
	if !errors.As(err, &verr) {
		t.Errorf("incomplete identity: got %v, want ValidationError", err)
	}
}

func TestLogin_LegacyPlaintextAccount(t *testing.T) {
	svc, store := testService(t)
	ctx := context.Background()

	insertLegacyAccount(t, store, "USR_LEGACY", "abc123")

	if _, _, err := svc.Login(ctx, LoginInput{Identifier: "USR_LEGACY", Secret: "abc123"}); err != nil {
		t.Errorf("legacy plaintext login failed: %v", err)
	}

	_, _, err := svc.Login(ctx, LoginInput{Identifier: "USR_LEGACY", Secret: "ABC123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("case-variant legacy secret: got %v, want ErrInvalidCredentials", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.Update(context.Background(), "USR_NOBODY", UpdateAccountInput{
		GivenName: "Ana", FamilyName: "Soto", Locality: "Chillán", Role: "ADM",
	})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("got %v, want ErrAccountNotFound", err)
	}
}

func TestUpdate_WithoutSecretKeepsPassword(t *testing.T) {
	svc, store := testService(t)
	ctx := context.Background()

	account := mustCreate(t, svc, CreateAccountInput{
		GivenName: "Ana", FamilyName: "Soto", Locality: "Chillán",
		Secret: "s3cret", Role: "ADM",
	})
	originalHash := account.PasswordHash

	updated, err := svc.Update(ctx, account.ID, UpdateAccountInput{
		GivenName: "Ana María", FamilyName: "Soto", Locality: "Quillón", Role: "ADM",
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if updated.PasswordHash != originalHash {
		t.Error("password material changed despite no secret being supplied")
	}

	stored, err := store.FindAccountByID(ctx, account.ID)
	if err != nil || stored == nil {
		t.Fatalf("reloading account: %v", err)
	}
	if stored.PasswordHash != originalHash {
		t.Error("stored password material not byte-identical after update")
	}

	// The original secret must still authenticate.
	if _, _, err := svc.Login(ctx, LoginInput{Identifier: account.ID, Secret: "s3cret"}); err != nil {
		t.Errorf("login with original secret after update failed: %v", err)
	}
}

func TestUpdate_WithSecretRotatesPassword(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	account := mustCreate(t, svc, CreateAccountInput{
		GivenName: "Ana", FamilyName: "Soto", Locality: "Chillán",
		Secret: "s3cret", Role: "ADM",
	})

	if _, err := svc.Update(ctx, account.ID, UpdateAccountInput{
		GivenName: "Ana", FamilyName: "Soto", Locality: "Chillán",
		Secret: "nuev4", Role: "ADM",
	}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, LoginInput{Identifier: account.ID, Secret: "nuev4"}); err != nil {
		t.Errorf("login with rotated secret failed: %v", err)
	}
	_, _, err := svc.Login(ctx, LoginInput{Identifier: account.ID, Secret: "s3cret"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old secret still accepted after rotation: %v", err)
	}
}

func TestUpdate_UnknownRole(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	account := mustCreate(t, svc, CreateAccountInput{
		GivenName: "Ana", FamilyName: "Soto", Locality: "Chillán",
		Secret: "s3cret", Role: "ADM",
	})

	_, err := svc.Update(ctx, account.ID, UpdateAccountInput{
		GivenName: "Ana", FamilyName: "Soto", Locality: "Chillán", Role: "NOPE",
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Message, "NOPE") {
		t.Errorf("error %q does not name the invalid role code", verr.Message)
	}
}

func TestSoftDelete_NoOwnedHives(t *testing.T) {
	svc, store := testService(t)
	ctx := context.Background()

	account := mustCreate(t, svc, CreateAccountInput{
		GivenName: "Ana", FamilyName: "Soto", Locality: "Chillán",
		Secret: "s3cret", Role: "ADM",
	})

	if err := svc.SoftDelete(ctx, account.ID); err != nil {
		t.Fatalf("SoftDelete() failed: %v", err)
	}

	// The account must no longer resolve.
	resolver := NewResolver(store)
	if got, _ := resolver.Resolve(ctx, account.ID, "", ""); got != nil {
		t.Error("soft-deleted account still resolves")
	}

	// And login must fail with the generic credential error.
	_, _, err := svc.Login(ctx, LoginInput{Identifier: account.ID, Secret: "s3cret"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("login after soft-delete: got %v, want ErrInvalidCredentials", err)
	}
}

func TestSoftDelete_OwnedHivesBlock(t *testing.T) {
	svc, store := testService(t)
	ctx := context.Background()

	account := mustCreate(t, svc, CreateAccountInput{
		GivenName: "Ana", FamilyName: "Soto", Locality: "Chillán",
		Secret: "s3cret", Role: "ADM",
	})
	insertHive(t, store, "COL_1", account.ID)
	insertHive(t, store, "COL_2", account.ID)

	err := svc.SoftDelete(ctx, account.ID)

	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if !strings.Contains(cerr.Message, "2") {
		t.Errorf("conflict message %q does not report the exact count", cerr.Message)
	}

	// The account stays active and can still log in.
	if _, _, err := svc.Login(ctx, LoginInput{Identifier: account.ID, Secret: "s3cret"}); err != nil {
		t.Errorf("blocked delete should leave the account usable: %v", err)
	}
}

func TestSoftDelete_NotFound(t *testing.T) {
	svc, _ := testService(t)

	if err := svc.SoftDelete(context.Background(), "USR_NOBODY"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("got %v, want ErrAccountNotFound", err)
	}
}

func TestList_ExcludesInactive(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	keep := mustCreate(t, svc, CreateAccountInput{
		GivenName: "Ana", FamilyName: "Soto", Locality: "Chillán",
		Secret: "s3cret", Role: "ADM",
	})
	gone := mustCreate(t, svc, CreateAccountInput{
		GivenName: "Beto", FamilyName: "Rojas", Locality: "Quillón",
		Secret: "0tr0", Role: "ADM",
	})
	if err := svc.SoftDelete(ctx, gone.ID); err != nil {
		t.Fatalf("SoftDelete() failed: %v", err)
	}

	accounts, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != keep.ID {
		t.Errorf("List() = %+v, want only %s", accounts, keep.ID)
	}
}

func TestRoles(t *testing.T) {
	svc, _ := testService(t)

	roles, err := svc.Roles(context.Background())
	if err != nil {
		t.Fatalf("Roles() failed: %v", err)
	}
	if len(roles) != 2 {
		t.Fatalf("got %d roles, want 2 (ADM, API)", len(roles))
	}
	if roles[0].Code != "ADM" || roles[1].Code != "API" {
		t.Errorf("roles = %+v, want ADM then API", roles)
	}
}
