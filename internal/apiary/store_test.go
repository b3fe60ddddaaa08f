package apiary

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smartbee-iot/smartbee-core/internal/auth"
	"github.com/smartbee-iot/smartbee-core/internal/infrastructure/logging"
)

// testSchema mirrors the initial migration, trimmed to what the apiary
// package touches.
const testSchema = `
CREATE TABLE rol (
	rol TEXT PRIMARY KEY,
	descripcion TEXT NOT NULL
);

CREATE TABLE usuario (
	id TEXT PRIMARY KEY,
	nombre TEXT NOT NULL,
	apellido TEXT NOT NULL,
	comuna TEXT NOT NULL,
	clave TEXT NOT NULL,
	rol TEXT NOT NULL REFERENCES rol(rol),
	activo INTEGER NOT NULL DEFAULT 1,
	creado_en TEXT NOT NULL,
	actualizado_en TEXT NOT NULL
);

CREATE TABLE nodo_tipo (
	tipo TEXT PRIMARY KEY,
	descripcion TEXT NOT NULL
);

CREATE TABLE nodo (
	id TEXT PRIMARY KEY,
	descripcion TEXT NOT NULL,
	tipo TEXT NOT NULL REFERENCES nodo_tipo(tipo)
);

CREATE TABLE colmena (
	id TEXT PRIMARY KEY,
	descripcion TEXT,
	dueno TEXT NOT NULL REFERENCES usuario(id),
	creado_en TEXT NOT NULL
);

CREATE TABLE nodo_mensaje (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	nodo_id TEXT NOT NULL,
	topico TEXT NOT NULL,
	payload TEXT NOT NULL,
	temperatura REAL,
	humedad REAL,
	peso REAL,
	latitud REAL,
	longitud REAL,
	fecha TEXT NOT NULL
);

INSERT INTO rol (rol, descripcion) VALUES ('ADM', 'Administrador');
INSERT INTO usuario (id, nombre, apellido, comuna, clave, rol, activo, creado_en, actualizado_en)
	VALUES ('USR_OWNER', 'Ana', 'Soto', 'Chillán', 'x', 'ADM', 1, datetime('now'), datetime('now'));
INSERT INTO nodo_tipo (tipo, descripcion) VALUES ('TEMP_HUM', 'Temperatura y humedad');
INSERT INTO nodo (id, descripcion, tipo) VALUES ('NODO-001', 'Nodo de prueba', 'TEMP_HUM');
`

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "apiary_test.db")
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("applying test schema: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})

	return db
}

func testService(t *testing.T) (*Service, *SQLiteStore) {
	t.Helper()

	db := testDB(t)
	store := NewStore(db)
	return NewService(store, auth.NewStore(db), logging.Default()), store
}

func floatPtr(f float64) *float64 { return &f }

func TestCreateHive(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	hive, err := svc.CreateHive(ctx, CreateHiveInput{
		Description: "Colmena norte", OwnerID: "USR_OWNER",
	})
	if err != nil {
		t.Fatalf("CreateHive() failed: %v", err)
	}
	if hive.ID == "" {
		t.Error("hive id should be generated")
	}

	got, err := svc.GetHive(ctx, hive.ID)
	if err != nil {
		t.Fatalf("GetHive() failed: %v", err)
	}
	if got.OwnerID != "USR_OWNER" {
		t.Errorf("owner = %q, want USR_OWNER", got.OwnerID)
	}
}

func TestCreateHive_Validation(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	var verr *ValidationError

	_, err := svc.CreateHive(ctx, CreateHiveInput{})
	if !errors.As(err, &verr) {
		t.Errorf("missing fields: got %v, want ValidationError", err)
	}

	_, err = svc.CreateHive(ctx, CreateHiveInput{Description: "x", OwnerID: "USR_NOBODY"})
	if !errors.As(err, &verr) {
		t.Errorf("unknown owner: got %v, want ValidationError", err)
	}
}

func TestGetHive_NotFound(t *testing.T) {
	svc, _ := testService(t)

	if _, err := svc.GetHive(context.Background(), "COL_NOPE"); !errors.Is(err, ErrHiveNotFound) {
		t.Errorf("got %v, want ErrHiveNotFound", err)
	}
}

func TestListNodesAndTypes(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	nodes, err := svc.ListNodes(ctx)
	if err != nil {
		t.Fatalf("ListNodes() failed: %v", err)
	}
	if len(nodes) != 1 || nodes[0].ID != "NODO-001" {
		t.Errorf("nodes = %+v, want NODO-001", nodes)
	}

	types, err := svc.ListNodeTypes(ctx)
	if err != nil {
		t.Fatalf("ListNodeTypes() failed: %v", err)
	}
	if len(types) != 1 || types[0].Type != "TEMP_HUM" {
		t.Errorf("types = %+v, want TEMP_HUM", types)
	}
}

func TestMessages_RecentAndLatest(t *testing.T) {
	_, store := testService(t)
	ctx := context.Background()

	old := &TelemetryMessage{
		NodeID: "NODO-001", Topic: "SmartBee/nodes/NODO-001/data",
		Payload: "{}", ReceivedAt: time.Now().UTC().Add(-48 * time.Hour),
	}
	fresh := &TelemetryMessage{
		NodeID: "NODO-001", Topic: "SmartBee/nodes/NODO-001/data",
		Payload:     `{"temperatura":34.2}`,
		Temperature: floatPtr(34.2),
	}
	for _, m := range []*TelemetryMessage{old, fresh} {
		if err := store.InsertMessage(ctx, m); err != nil {
			t.Fatalf("InsertMessage() failed: %v", err)
		}
	}

	recent, err := store.RecentMessages(ctx, 24, 100)
	if err != nil {
		t.Fatalf("RecentMessages() failed: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != fresh.ID {
		t.Fatalf("RecentMessages() = %+v, want only the fresh message", recent)
	}
	if recent[0].Temperature == nil || *recent[0].Temperature != 34.2 {
		t.Errorf("temperature = %v, want 34.2", recent[0].Temperature)
	}
	if recent[0].Humidity != nil {
		t.Errorf("humidity should be nil when not reported, got %v", *recent[0].Humidity)
	}

	latest, err := store.LatestMessages(ctx, 100)
	if err != nil {
		t.Fatalf("LatestMessages() failed: %v", err)
	}
	if len(latest) != 2 {
		t.Errorf("LatestMessages() returned %d messages, want 2", len(latest))
	}
	if latest[0].ID != fresh.ID {
		t.Error("LatestMessages() should be newest first")
	}
}

func TestDashboardStats(t *testing.T) {
	svc, store := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateHive(ctx, CreateHiveInput{
		Description: "Colmena norte", OwnerID: "USR_OWNER",
	}); err != nil {
		t.Fatalf("CreateHive() failed: %v", err)
	}
	if err := store.InsertMessage(ctx, &TelemetryMessage{
		NodeID: "NODO-001", Topic: "SmartBee/nodes/NODO-001/data", Payload: "{}",
	}); err != nil {
		t.Fatalf("InsertMessage() failed: %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}

	if stats.ActiveAccounts != 1 || stats.Hives != 1 || stats.Nodes != 1 || stats.Messages != 1 {
		t.Errorf("stats = %+v, want 1/1/1/1", stats)
	}
	if stats.LastMessageAt == nil {
		t.Error("LastMessageAt should be set")
	}
}
