package auth

import (
	"errors"
	"time"
)

// Account represents a login-capable identity record.
//
// The id doubles as the login identifier and is never reused, even after
// soft-delete. PasswordHash holds either a bcrypt hash or, for records
// imported from the legacy deployment, plaintext — see VerifyPassword.
type Account struct {
	ID           string
	GivenName    string
	FamilyName   string
	Locality     string
	PasswordHash string
	Role         string
	RoleName     string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountSummary is the wire representation of an account.
// It never includes password material. Field names match the JSON contract
// the SmartBee frontend consumes (activo serialised as 0/1).
type AccountSummary struct {
	ID         string `json:"id"`
	GivenName  string `json:"nombre"`
	FamilyName string `json:"apellido"`
	Locality   string `json:"comuna"`
	Role       string `json:"rol"`
	RoleName   string `json:"rol_nombre,omitempty"`
	Active     int    `json:"activo"`
}

// Summary returns the wire representation of the account.
func (a *Account) Summary() AccountSummary {
	active := 0
	if a.Active {
		active = 1
	}
	return AccountSummary{
		ID:         a.ID,
		GivenName:  a.GivenName,
		FamilyName: a.FamilyName,
		Locality:   a.Locality,
		Role:       a.Role,
		RoleName:   a.RoleName,
		Active:     active,
	}
}

// Role represents an authorisation tier referenced by accounts.
type Role struct {
	Code        string `json:"rol"`
	Description string `json:"descripcion"`
}

// Well-known role codes seeded by the initial migration.
const (
	// RoleAdmin is the platform administrator role.
	RoleAdmin = "ADM"

	// RoleAPI is the machine-to-machine role used by ingest tooling.
	RoleAPI = "API"
)

// ValidationError indicates invalid caller input (missing or blank required
// fields, unknown role). Maps to HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a state conflict: a duplicate account id, or an
// account that cannot be soft-deleted because it still owns resources.
// Maps to HTTP 400 with an explanatory message.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Sentinel errors for auth operations.
var (
	// ErrAccountNotFound indicates no active account matches the given id.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidCredentials is returned for both resolver misses and
	// password mismatches. Callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateAccountID is returned by the store when an insert hits
	// the primary-key constraint. Account ids are never reused.
	ErrDuplicateAccountID = errors.New("account id already exists")
)
