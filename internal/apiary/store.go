package apiary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store defines persistence for hives, nodes, and telemetry.
// Lookups report not-found as a (nil, nil) result.
type Store interface {
	ListHives(ctx context.Context) ([]Hive, error)
	FindHive(ctx context.Context, id string) (*Hive, error)
	InsertHive(ctx context.Context, hive *Hive) error

	ListNodes(ctx context.Context) ([]SensorNode, error)
	ListNodeTypes(ctx context.Context) ([]NodeType, error)

	InsertMessage(ctx context.Context, msg *TelemetryMessage) error

	// RecentMessages returns messages received within the last `hours`
	// hours, newest first, capped at `limit`.
	RecentMessages(ctx context.Context, hours, limit int) ([]TelemetryMessage, error)

	// LatestMessages returns the newest messages regardless of age,
	// capped at `limit`. Fallback for sparse deployments where the
	// time-windowed query comes back empty.
	LatestMessages(ctx context.Context, limit int) ([]TelemetryMessage, error)

	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewStore creates a new SQLite-backed apiary store.
func NewStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// ListHives returns all hives ordered by creation date.
func (s *SQLiteStore) ListHives(ctx context.Context) ([]Hive, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, COALESCE(descripcion, ''), dueno, creado_en FROM colmena ORDER BY creado_en ASC")
	if err != nil {
		return nil, fmt.Errorf("listing hives: %w", err)
	}
	defer rows.Close()

	var hives []Hive
	for rows.Next() {
		h, err := scanHive(rows)
		if err != nil {
			return nil, err
		}
		hives = append(hives, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hives: %w", err)
	}

	if hives == nil {
		hives = []Hive{}
	}
	return hives, nil
}

// FindHive returns the hive with the given id, or nil.
func (s *SQLiteStore) FindHive(ctx context.Context, id string) (*Hive, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, COALESCE(descripcion, ''), dueno, creado_en FROM colmena WHERE id = ?", id)

	h, err := scanHive(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return h, nil
}

// InsertHive persists a new hive.
func (s *SQLiteStore) InsertHive(ctx context.Context, hive *Hive) error {
	now := time.Now().UTC().Format(time.RFC3339)
	hive.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO colmena (id, descripcion, dueno, creado_en) VALUES (?, ?, ?, ?)",
		hive.ID, hive.Description, hive.OwnerID, now,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrDuplicateHiveID
		case isForeignKeyViolation(err):
			return ErrUnknownOwner
		}
		return fmt.Errorf("inserting hive: %w", err)
	}

	return nil
}

// ListNodes returns all sensor nodes ordered by id.
func (s *SQLiteStore) ListNodes(ctx context.Context) ([]SensorNode, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, descripcion, tipo FROM nodo ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	defer rows.Close()

	var nodes []SensorNode
	for rows.Next() {
		var n SensorNode
		if err := rows.Scan(&n.ID, &n.Description, &n.Type); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}

	if nodes == nil {
		nodes = []SensorNode{}
	}
	return nodes, nil
}

// ListNodeTypes returns all node types ordered by type code.
func (s *SQLiteStore) ListNodeTypes(ctx context.Context) ([]NodeType, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT tipo, descripcion FROM nodo_tipo ORDER BY tipo ASC")
	if err != nil {
		return nil, fmt.Errorf("listing node types: %w", err)
	}
	defer rows.Close()

	var types []NodeType
	for rows.Next() {
		var nt NodeType
		if err := rows.Scan(&nt.Type, &nt.Description); err != nil {
			return nil, fmt.Errorf("scanning node type: %w", err)
		}
		types = append(types, nt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating node types: %w", err)
	}

	if types == nil {
		types = []NodeType{}
	}
	return types, nil
}

// messageColumns is the SELECT list shared by the telemetry queries.
const messageColumns = `id, nodo_id, topico, payload, temperatura, humedad, peso, latitud, longitud, fecha`

// InsertMessage archives a telemetry message.
func (s *SQLiteStore) InsertMessage(ctx context.Context, msg *TelemetryMessage) error {
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO nodo_mensaje (nodo_id, topico, payload, temperatura, humedad, peso, latitud, longitud, fecha)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.NodeID, msg.Topic, msg.Payload,
		msg.Temperature, msg.Humidity, msg.Weight, msg.Latitude, msg.Longitude,
		msg.ReceivedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	msg.ID, _ = result.LastInsertId() //nolint:errcheck // always succeeds on SQLite
	return nil
}

// RecentMessages returns messages from the last `hours` hours, newest
// first, capped at `limit`.
func (s *SQLiteStore) RecentMessages(ctx context.Context, hours, limit int) ([]TelemetryMessage, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour).Format(time.RFC3339)

	return s.queryMessages(ctx,
		"SELECT "+messageColumns+" FROM nodo_mensaje WHERE fecha >= ? ORDER BY fecha DESC LIMIT ?",
		cutoff, limit)
}

// LatestMessages returns the newest messages regardless of age.
func (s *SQLiteStore) LatestMessages(ctx context.Context, limit int) ([]TelemetryMessage, error) {
	return s.queryMessages(ctx,
		"SELECT "+messageColumns+" FROM nodo_mensaje ORDER BY fecha DESC LIMIT ?", limit)
}

// DashboardStats aggregates platform counts.
func (s *SQLiteStore) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM usuario WHERE activo = 1", &stats.ActiveAccounts},
		{"SELECT COUNT(*) FROM colmena", &stats.Hives},
		{"SELECT COUNT(*) FROM nodo", &stats.Nodes},
		{"SELECT COUNT(*) FROM nodo_mensaje", &stats.Messages},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("aggregating dashboard stats: %w", err)
		}
	}

	var last sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT MAX(fecha) FROM nodo_mensaje").Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("finding last message time: %w", err)
	}
	if last.Valid {
		t, err := time.Parse(time.RFC3339, last.String)
		if err == nil {
			stats.LastMessageAt = &t
		}
	}

	return &stats, nil
}

// queryMessages runs a telemetry query and scans the results.
func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...any) ([]TelemetryMessage, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []TelemetryMessage
	for rows.Next() {
		var m TelemetryMessage
		var fecha string
		err := rows.Scan(&m.ID, &m.NodeID, &m.Topic, &m.Payload,
			&m.Temperature, &m.Humidity, &m.Weight, &m.Latitude, &m.Longitude,
			&fecha)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.ReceivedAt, _ = time.Parse(time.RFC3339, fecha) //nolint:errcheck // format is controlled
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	if messages == nil {
		messages = []TelemetryMessage{}
	}
	return messages, nil
}

// scanHive scans a hive from a Row or Rows.
func scanHive(s interface{ Scan(dest ...any) error }) (*Hive, error) {
	var h Hive
	var createdAt string
	if err := s.Scan(&h.ID, &h.Description, &h.OwnerID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scanning hive: %w", err)
	}
	h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	return &h, nil
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation checks if a SQLite error is a FOREIGN KEY violation.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
