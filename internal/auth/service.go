package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartbee-iot/smartbee-core/internal/infrastructure/logging"
)

// Service orchestrates credential authentication and account lifecycle.
//
// It validates all mutations before touching the store and owns the mapping
// from store results to the error taxonomy (ValidationError, ConflictError,
// ErrAccountNotFound, ErrInvalidCredentials).
type Service struct {
	store    Store
	resolver *Resolver
	logger   *logging.Logger
}

// NewService creates the account service.
func NewService(store Store, logger *logging.Logger) *Service {
	return &Service{
		store:    store,
		resolver: NewResolver(store),
		logger:   logger.With("component", "auth"),
	}
}

// CreateAccountInput holds the fields for provisioning an account.
// ID is optional; one is generated when blank. Active defaults to true.
type CreateAccountInput struct {
	ID         string `json:"id"`
	GivenName  string `json:"nombre"`
	FamilyName string `json:"apellido"`
	Locality   string `json:"comuna"`
	Secret     string `json:"clave"`
	Role       string `json:"rol"`
	Active     *bool  `json:"activo"`
}

// UpdateAccountInput holds the fields for updating an account.
// Secret is optional; password material is untouched when blank.
type UpdateAccountInput struct {
	GivenName  string `json:"nombre"`
	FamilyName string `json:"apellido"`
	Locality   string `json:"comuna"`
	Secret     string `json:"clave"`
	Role       string `json:"rol"`
	Active     *bool  `json:"activo"`
}

// LoginInput holds the credentials for a login attempt. The caller supplies
// either an identifier, or both names.
type LoginInput struct {
	Identifier string `json:"id"`
	GivenName  string `json:"nombre"`
	FamilyName string `json:"apellido"`
	Secret     string `json:"clave"`
}

// Login authenticates a caller and issues a session token.
//
// Resolution misses and password mismatches both return
// ErrInvalidCredentials so the response never reveals which factor failed.
func (s *Service) Login(ctx context.Context, in LoginInput) (string, *Account, error) {
	if strings.TrimSpace(in.Secret) == "" {
		return "", nil, &ValidationError{Message: "clave es requerida"}
	}
	hasID := strings.TrimSpace(in.Identifier) != ""
	hasNames := strings.TrimSpace(in.GivenName) != "" && strings.TrimSpace(in.FamilyName) != ""
	if !hasID && !hasNames {
		return "", nil, &ValidationError{Message: "debe indicar id, o nombre y apellido"}
	}

	account, err := s.resolver.Resolve(ctx, in.Identifier, in.GivenName, in.FamilyName)
	if err != nil {
		return "", nil, fmt.Errorf("resolving identity: %w", err)
	}
	if account == nil {
		return "", nil, ErrInvalidCredentials
	}

	if !VerifyPassword(in.Secret, account.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token := IssueToken(account.ID)
	s.logger.Info("login succeeded", "account_id", account.ID)
	return token, account, nil
}

// Create provisions a new account.
//
// Validation failures (blank required fields, unknown role) return a
// ValidationError naming each offending field. A duplicate id, whether
// caught by the pre-check or by the primary-key constraint under a
// concurrent create, returns a ConflictError.
func (s *Service) Create(ctx context.Context, in CreateAccountInput) (*Account, error) {
	var missing []string
	if strings.TrimSpace(in.GivenName) == "" {
		missing = append(missing, "nombre")
	}
	if strings.TrimSpace(in.FamilyName) == "" {
		missing = append(missing, "apellido")
	}
	if strings.TrimSpace(in.Locality) == "" {
		missing = append(missing, "comuna")
	}
	if strings.TrimSpace(in.Secret) == "" {
		missing = append(missing, "clave")
	}
	if strings.TrimSpace(in.Role) == "" {
		missing = append(missing, "rol")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{
			Message: "campos requeridos: " + strings.Join(missing, ", "),
		}
	}

	role, err := s.store.FindRole(ctx, in.Role)
	if err != nil {
		return nil, fmt.Errorf("validating role: %w", err)
	}
	if role == nil {
		return nil, &ValidationError{Message: "rol desconocido: " + in.Role}
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = generateAccountID()
	} else {
		exists, err := s.store.AccountIDExists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("checking account id: %w", err)
		}
		if exists {
			return nil, &ConflictError{Message: "ya existe un usuario con id " + id}
		}
	}

	hash, err := HashPassword(in.Secret)
	if err != nil {
		return nil, err
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	account := &Account{
		ID:           id,
		GivenName:    in.GivenName,
		FamilyName:   in.FamilyName,
		Locality:     in.Locality,
		PasswordHash: hash,
		Role:         role.Code,
		RoleName:     role.Description,
		Active:       active,
	}

	if err := s.store.InsertAccount(ctx, account); err != nil {
		// The id pre-check is check-then-act; a concurrent create with the
		// same id loses here at the primary-key constraint.
		if errors.Is(err, ErrDuplicateAccountID) {
			return nil, &ConflictError{Message: "ya existe un usuario con id " + id}
		}
		return nil, err
	}

	s.logger.Info("account created", "account_id", account.ID, "role", account.Role)
	return account, nil
}

// Update modifies an existing active account.
//
// Name, locality, and role are required on every update; the secret is
// optional and, when blank, the stored password material is left
// byte-identical.
func (s *Service) Update(ctx context.Context, id string, in UpdateAccountInput) (*Account, error) {
	account, err := s.store.FindAccountByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	var missing []string
	if strings.TrimSpace(in.GivenName) == "" {
		missing = append(missing, "nombre")
	}
	if strings.TrimSpace(in.FamilyName) == "" {
		missing = append(missing, "apellido")
	}
	if strings.TrimSpace(in.Locality) == "" {
		missing = append(missing, "comuna")
	}
	if strings.TrimSpace(in.Role) == "" {
		missing = append(missing, "rol")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{
			Message: "campos requeridos: " + strings.Join(missing, ", "),
		}
	}

	role, err := s.store.FindRole(ctx, in.Role)
	if err != nil {
		return nil, fmt.Errorf("validating role: %w", err)
	}
	if role == nil {
		return nil, &ValidationError{Message: "rol desconocido: " + in.Role}
	}

	account.GivenName = in.GivenName
	account.FamilyName = in.FamilyName
	account.Locality = in.Locality
	account.Role = role.Code
	account.RoleName = role.Description
	if in.Active != nil {
		account.Active = *in.Active
	}

	if strings.TrimSpace(in.Secret) != "" {
		hash, err := HashPassword(in.Secret)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = hash
	}

	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account updated", "account_id", account.ID)
	return account, nil
}

// SoftDelete marks an account inactive.
//
// An account that still owns hives cannot be deleted; the conflict message
// reports the exact count. Deactivation is terminal: there is no
// reactivation path and the id is never reused.
func (s *Service) SoftDelete(ctx context.Context, id string) error {
	account, err := s.store.FindAccountByID(ctx, id)
	if err != nil {
		return fmt.Errorf("finding account: %w", err)
	}
	if account == nil {
		return ErrAccountNotFound
	}

	count, err := s.store.CountHivesForOwner(ctx, id)
	if err != nil {
		return fmt.Errorf("counting owned hives: %w", err)
	}
	if count > 0 {
		return &ConflictError{
			Message: fmt.Sprintf("no se puede eliminar: el usuario posee %d colmena(s)", count),
		}
	}

	// Count-then-flag is not atomic; a hive assigned between the check and
	// the update slips through. Accepted as-is for apiary-scale traffic.
	if err := s.store.SetAccountInactive(ctx, id); err != nil {
		return err
	}

	s.logger.Info("account deactivated", "account_id", id)
	return nil
}

// List returns all active accounts.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.store.ListAccounts(ctx)
}

// Get returns the active account with the given id.
func (s *Service) Get(ctx context.Context, id string) (*Account, error) {
	account, err := s.store.FindAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// Roles returns all defined roles.
func (s *Service) Roles(ctx context.Context) ([]Role, error) {
	return s.store.ListRoles(ctx)
}

// generateAccountID builds a practically unique account identifier from the
// current timestamp plus a random suffix. Not cryptographic; collisions are
// rejected by the primary-key constraint regardless.
func generateAccountID() string {
	return fmt.Sprintf("USR_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
