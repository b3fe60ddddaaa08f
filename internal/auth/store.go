package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store defines the persistence interface for accounts and roles.
//
// Lookup methods report not-found as a (nil, nil) result rather than an
// error; the service layer decides whether a miss is a 404, a 401, or a
// normal outcome.
type Store interface {
	// FindAccountByID returns the active account with the given id, or nil.
	FindAccountByID(ctx context.Context, id string) (*Account, error)

	// FindAccountByName returns the first active account whose trimmed,
	// case-folded name pair matches, or nil.
	FindAccountByName(ctx context.Context, givenName, familyName string) (*Account, error)

	// AccountIDExists reports whether any account (active or soft-deleted)
	// holds the given id. Ids are never reused.
	AccountIDExists(ctx context.Context, id string) (bool, error)

	// InsertAccount persists a new account. Returns ErrDuplicateAccountID
	// if the id is already taken.
	InsertAccount(ctx context.Context, account *Account) error

	// UpdateAccount rewrites the mutable fields of an account.
	UpdateAccount(ctx context.Context, account *Account) error

	// SetAccountInactive soft-deletes an account.
	SetAccountInactive(ctx context.Context, id string) error

	// CountHivesForOwner returns the number of hives owned by an account.
	CountHivesForOwner(ctx context.Context, ownerID string) (int, error)

	// FindRole returns the role with the given code, or nil.
	FindRole(ctx context.Context, code string) (*Role, error)

	// ListAccounts returns all active accounts.
	ListAccounts(ctx context.Context) ([]Account, error)

	// ListRoles returns all roles.
	ListRoles(ctx context.Context) ([]Role, error)

	// CountAccounts returns the total number of accounts, including
	// soft-deleted ones. Used by first-boot seeding.
	CountAccounts(ctx context.Context) (int, error)
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewStore creates a new SQLite-backed account store.
func NewStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// accountColumns is the SELECT list shared by all account queries.
// rol_nombre comes from the joined rol table.
const accountColumns = `u.id, u.nombre, u.apellido, u.comuna, u.clave, u.rol,
	COALESCE(r.descripcion, ''), u.activo, u.creado_en, u.actualizado_en`

const accountFrom = ` FROM usuario u LEFT JOIN rol r ON r.rol = u.rol`

// FindAccountByID returns the active account with the given id, or nil.
func (s *SQLiteStore) FindAccountByID(ctx context.Context, id string) (*Account, error) {
	return s.getAccount(ctx,
		"SELECT "+accountColumns+accountFrom+" WHERE u.id = ? AND u.activo = 1", id)
}

// FindAccountByName returns the first active account matching the trimmed,
// case-folded name pair, or nil. Matching is done in SQL so legacy records
// with stray whitespace still resolve.
func (s *SQLiteStore) FindAccountByName(ctx context.Context, givenName, familyName string) (*Account, error) {
	return s.getAccount(ctx,
		"SELECT "+accountColumns+accountFrom+
			" WHERE lower(trim(u.nombre)) = ? AND lower(trim(u.apellido)) = ? AND u.activo = 1"+
			" ORDER BY u.rowid LIMIT 1",
		strings.ToLower(strings.TrimSpace(givenName)),
		strings.ToLower(strings.TrimSpace(familyName)),
	)
}

// AccountIDExists reports whether any account holds the given id,
// including soft-deleted ones.
func (s *SQLiteStore) AccountIDExists(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM usuario WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking account id: %w", err)
	}
	return count > 0, nil
}

// InsertAccount persists a new account.
func (s *SQLiteStore) InsertAccount(ctx context.Context, account *Account) error {
	now := time.Now().UTC().Format(time.RFC3339)
	account.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	account.UpdatedAt = account.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usuario (id, nombre, apellido, comuna, clave, rol, activo, creado_en, actualizado_en)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.GivenName, account.FamilyName, account.Locality,
		account.PasswordHash, account.Role, boolToInt(account.Active), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAccountID
		}
		return fmt.Errorf("inserting account: %w", err)
	}

	return nil
}

// UpdateAccount rewrites the mutable fields of an account, including
// password material (callers preserve the existing hash when no new
// secret was supplied).
func (s *SQLiteStore) UpdateAccount(ctx context.Context, account *Account) error {
	now := time.Now().UTC().Format(time.RFC3339)
	account.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	result, err := s.db.ExecContext(ctx,
		`UPDATE usuario SET nombre = ?, apellido = ?, comuna = ?, clave = ?, rol = ?, activo = ?, actualizado_en = ?
		 WHERE id = ?`,
		account.GivenName, account.FamilyName, account.Locality,
		account.PasswordHash, account.Role, boolToInt(account.Active), now,
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// SetAccountInactive soft-deletes an account. The row is never removed.
func (s *SQLiteStore) SetAccountInactive(ctx context.Context, id string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := s.db.ExecContext(ctx,
		"UPDATE usuario SET activo = 0, actualizado_en = ? WHERE id = ? AND activo = 1",
		now, id,
	)
	if err != nil {
		return fmt.Errorf("deactivating account: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// CountHivesForOwner returns the number of hives owned by an account.
func (s *SQLiteStore) CountHivesForOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM colmena WHERE dueno = ?", ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting hives for owner: %w", err)
	}
	return count, nil
}

// FindRole returns the role with the given code, or nil.
func (s *SQLiteStore) FindRole(ctx context.Context, code string) (*Role, error) {
	var role Role
	err := s.db.QueryRowContext(ctx,
		"SELECT rol, descripcion FROM rol WHERE rol = ?", code,
	).Scan(&role.Code, &role.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding role: %w", err)
	}
	return &role, nil
}

// ListAccounts returns all active accounts ordered by creation date.
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+accountColumns+accountFrom+" WHERE u.activo = 1 ORDER BY u.creado_en ASC")
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		a, err := scanAccountFrom(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	if accounts == nil {
		accounts = []Account{}
	}
	return accounts, nil
}

// ListRoles returns all roles ordered by code.
func (s *SQLiteStore) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT rol, descripcion FROM rol ORDER BY rol ASC")
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.Code, &r.Description); err != nil {
			return nil, fmt.Errorf("scanning role: %w", err)
		}
		roles = append(roles, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating roles: %w", err)
	}

	if roles == nil {
		roles = []Role{}
	}
	return roles, nil
}

// CountAccounts returns the total number of accounts, including
// soft-deleted ones.
func (s *SQLiteStore) CountAccounts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usuario").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return count, nil
}

// getAccount executes a query and scans a single account result.
// Returns (nil, nil) when no row matches.
func (s *SQLiteStore) getAccount(ctx context.Context, query string, args ...any) (*Account, error) {
	row := s.db.QueryRowContext(ctx, query, args...)
	a, err := scanAccountFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanAccountFrom scans an account from any scanner (Row or Rows).
func scanAccountFrom(s scanner) (*Account, error) {
	var a Account
	var activo int
	var createdAt, updatedAt string

	err := s.Scan(&a.ID, &a.GivenName, &a.FamilyName, &a.Locality,
		&a.PasswordHash, &a.Role, &a.RoleName, &activo,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scanning account: %w", err)
	}

	a.Active = activo != 0
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &a, nil
}

// Helper functions.

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "unique constraint"))
}
