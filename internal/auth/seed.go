package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/smartbee-iot/smartbee-core/internal/infrastructure/logging"
)

// seedPasswordBytes is the number of random bytes for the seed admin password.
const seedPasswordBytes = 16

// SeedAdmin creates the initial administrator account on first boot if no
// accounts exist. The generated password is logged once and must be changed
// immediately. Returns the generated password (empty string if seeding was
// skipped).
func SeedAdmin(ctx context.Context, store Store, logger *logging.Logger) (string, error) {
	count, err := store.CountAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("checking account count: %w", err)
	}

	if count > 0 {
		logger.Info("accounts exist, skipping admin seed")
		return "", nil
	}

	passwordBytes := make([]byte, seedPasswordBytes)
	if _, err := rand.Read(passwordBytes); err != nil { //nolint:govet // shadow: err re-declared in nested scope
		return "", fmt.Errorf("generating seed password: %w", err)
	}
	password := hex.EncodeToString(passwordBytes)

	hash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing seed password: %w", err)
	}

	admin := &Account{
		ID:           "USR_admin",
		GivenName:    "Admin",
		FamilyName:   "SmartBee",
		Locality:     "Chillán",
		PasswordHash: hash,
		Role:         RoleAdmin,
		Active:       true,
	}

	if err := store.InsertAccount(ctx, admin); err != nil {
		return "", fmt.Errorf("creating seed admin: %w", err)
	}

	logger.Warn("seed admin account created",
		"account_id", admin.ID,
		"password", password,
		"action_required", "change this password immediately",
	)

	return password, nil
}
