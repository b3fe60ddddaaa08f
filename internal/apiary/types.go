package apiary

import (
	"errors"
	"time"
)

// Hive represents a registered beehive (colmena). Every hive is owned by
// an account; the owner reference is what blocks account soft-deletion.
type Hive struct {
	ID          string    `json:"id"`
	Description string    `json:"descripcion"`
	OwnerID     string    `json:"dueno"`
	CreatedAt   time.Time `json:"creado_en"`
}

// SensorNode represents a field device (nodo) reporting telemetry.
type SensorNode struct {
	ID          string `json:"id"`
	Description string `json:"descripcion"`
	Type        string `json:"tipo"`
}

// NodeType categorises sensor nodes (nodo_tipo).
type NodeType struct {
	Type        string `json:"tipo"`
	Description string `json:"descripcion"`
}

// TelemetryMessage is one reading published by a field node
// (nodo_mensaje). Payload holds the raw JSON as received; the numeric
// fields are parsed out at ingest time and are nil when the node did not
// report them.
type TelemetryMessage struct {
	ID          int64     `json:"id"`
	NodeID      string    `json:"nodo_id"`
	Topic       string    `json:"topico"`
	Payload     string    `json:"payload"`
	Temperature *float64  `json:"temperatura,omitempty"`
	Humidity    *float64  `json:"humedad,omitempty"`
	Weight      *float64  `json:"peso,omitempty"`
	Latitude    *float64  `json:"latitud,omitempty"`
	Longitude   *float64  `json:"longitud,omitempty"`
	ReceivedAt  time.Time `json:"fecha"`
}

// DashboardStats aggregates platform counts for the dashboard endpoint.
type DashboardStats struct {
	ActiveAccounts int        `json:"usuarios_activos"`
	Hives          int        `json:"colmenas"`
	Nodes          int        `json:"nodos"`
	Messages       int        `json:"mensajes"`
	LastMessageAt  *time.Time `json:"ultimo_mensaje,omitempty"`
}

// ValidationError indicates invalid caller input. Maps to HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Sentinel errors for apiary operations.
var (
	// ErrHiveNotFound indicates no hive matches the given id.
	ErrHiveNotFound = errors.New("hive not found")

	// ErrDuplicateHiveID is returned when an insert hits the primary-key
	// constraint.
	ErrDuplicateHiveID = errors.New("hive id already exists")

	// ErrUnknownOwner indicates the hive's owner account does not exist.
	ErrUnknownOwner = errors.New("owner account not found")
)
