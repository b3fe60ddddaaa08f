// Package database provides SQLite connection management and schema
// migrations for the SmartBee registry.
//
// The registry holds the durable state of the platform: accounts, roles,
// hives, sensor nodes, and the telemetry messages they report. SQLite is
// used in WAL mode with a single-writer connection pool, which is plenty
// for an apiary-scale deployment and keeps operation simple (one file,
// no server).
//
// Migrations are embedded into the binary via the migrations package and
// applied on startup:
//
//	db, err := database.Open(database.Config{Path: "./data/smartbee.db", WALMode: true, BusyTimeout: 5})
//	if err != nil { ... }
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil { ... }
package database
