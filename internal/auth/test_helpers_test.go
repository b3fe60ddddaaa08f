package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smartbee-iot/smartbee-core/internal/infrastructure/logging"
)

// testSchema mirrors the initial migration, trimmed to the tables the auth
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

CREATE TABLE colmena (
	id TEXT PRIMARY KEY,
	descripcion TEXT,
	dueno TEXT NOT NULL REFERENCES usuario(id),
	creado_en TEXT NOT NULL DEFAULT (datetime('now'))
);

INSERT INTO rol (rol, descripcion) VALUES ('ADM', 'Administrador');
INSERT INTO rol (rol, descripcion) VALUES ('API', 'Aplicación externa');
`

// testDB creates a temporary database with the auth schema applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "auth_test.db")
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

// testService creates a Service backed by a fresh database.
func testService(t *testing.T) (*Service, *SQLiteStore) {
	t.Helper()

	store := NewStore(testDB(t))
	return NewService(store, logging.Default()), store
}

// mustCreate provisions an account and fails the test on error.
func mustCreate(t *testing.T, svc *Service, in CreateAccountInput) *Account {
	t.Helper()

	account, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("creating account: %v", err)
	}
	return account
}

// insertHive adds a hive owned by the given account, bypassing the service.
func insertHive(t *testing.T, store *SQLiteStore, hiveID, ownerID string) {
	t.Helper()

	_, err := store.db.Exec(
		"INSERT INTO colmena (id, descripcion, dueno) VALUES (?, ?, ?)",
		hiveID, "test hive", ownerID,
	)
	if err != nil {
		t.Fatalf("inserting hive: %v", err)
	}
}

// insertLegacyAccount adds an account with raw password material, bypassing
// the service's hashing (simulates records imported from the old deployment).
func insertLegacyAccount(t *testing.T, store *SQLiteStore, id, material string) {
	t.Helper()

	_, err := store.db.Exec(
		`INSERT INTO usuario (id, nombre, apellido, comuna, clave, rol, activo, creado_en, actualizado_en)
		 VALUES (?, 'Legado', 'Prueba', 'Chillán', ?, 'ADM', 1, datetime('now'), datetime('now'))`,
		id, material,
	)
	if err != nil {
		t.Fatalf("inserting legacy account: %v", err)
	}
}
