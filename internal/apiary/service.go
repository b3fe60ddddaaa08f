package apiary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartbee-iot/smartbee-core/internal/auth"
	"github.com/smartbee-iot/smartbee-core/internal/infrastructure/logging"
)

// Service exposes the hive registry and telemetry queries.
type Service struct {
	store    Store
	accounts auth.Store
	logger   *logging.Logger
}

// NewService creates the apiary service. The account store is used to
// validate hive owners against active accounts.
func NewService(store Store, accounts auth.Store, logger *logging.Logger) *Service {
	return &Service{
		store:    store,
		accounts: accounts,
		logger:   logger.With("component", "apiary"),
	}
}

// CreateHiveInput holds the fields for registering a hive.
// ID is optional; one is generated when blank.
type CreateHiveInput struct {
	ID          string `json:"id"`
	Description string `json:"descripcion"`
	OwnerID     string `json:"dueno"`
}

// CreateHive registers a new hive owned by an active account.
func (s *Service) CreateHive(ctx context.Context, in CreateHiveInput) (*Hive, error) {
	var missing []string
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "descripcion")
	}
	if strings.TrimSpace(in.OwnerID) == "" {
		missing = append(missing, "dueno")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{
			Message: "campos requeridos: " + strings.Join(missing, ", "),
		}
	}

	owner, err := s.accounts.FindAccountByID(ctx, in.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("validating owner: %w", err)
	}
	if owner == nil {
		return nil, &ValidationError{Message: "dueño desconocido: " + in.OwnerID}
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = generateHiveID()
	}

	hive := &Hive{
		ID:          id,
		Description: in.Description,
		OwnerID:     owner.ID,
	}

	if err := s.store.InsertHive(ctx, hive); err != nil {
		if errors.Is(err, ErrDuplicateHiveID) {
			return nil, &ValidationError{Message: "ya existe una colmena con id " + id}
		}
		return nil, err
	}

	s.logger.Info("hive registered", "hive_id", hive.ID, "owner", hive.OwnerID)
	return hive, nil
}

// GetHive returns the hive with the given id.
func (s *Service) GetHive(ctx context.Context, id string) (*Hive, error) {
	hive, err := s.store.FindHive(ctx, id)
	if err != nil {
		return nil, err
	}
	if hive == nil {
		return nil, ErrHiveNotFound
	}
	return hive, nil
}

// ListHives returns all registered hives.
func (s *Service) ListHives(ctx context.Context) ([]Hive, error) {
	return s.store.ListHives(ctx)
}

// ListNodes returns all sensor nodes.
func (s *Service) ListNodes(ctx context.Context) ([]SensorNode, error) {
	return s.store.ListNodes(ctx)
}

// ListNodeTypes returns all node types.
func (s *Service) ListNodeTypes(ctx context.Context) ([]NodeType, error) {
	return s.store.ListNodeTypes(ctx)
}

// RecentMessages returns telemetry from the last `hours` hours.
// Defaults: 24 hours, 100 messages.
func (s *Service) RecentMessages(ctx context.Context, hours, limit int) ([]TelemetryMessage, error) {
	if hours <= 0 {
		hours = 24
	}
	if limit <= 0 || limit > maxMessageLimit {
		limit = defaultMessageLimit
	}
	return s.store.RecentMessages(ctx, hours, limit)
}

// LatestMessages returns the newest telemetry regardless of age.
func (s *Service) LatestMessages(ctx context.Context, limit int) ([]TelemetryMessage, error) {
	if limit <= 0 || limit > maxMessageLimit {
		limit = defaultMessageLimit
	}
	return s.store.LatestMessages(ctx, limit)
}

// Stats aggregates the dashboard counters.
func (s *Service) Stats(ctx context.Context) (*DashboardStats, error) {
	return s.store.DashboardStats(ctx)
}

// Telemetry query bounds.
const (
	defaultMessageLimit = 100
	maxMessageLimit     = 1000
)

// generateHiveID builds a practically unique hive identifier.
func generateHiveID() string {
	return fmt.Sprintf("COL_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
