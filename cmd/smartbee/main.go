// SmartBee Core - Apiary Monitoring Platform
//
// This is the main entry point for the SmartBee Core application.
// SmartBee collects telemetry from LoRa/WiFi sensor nodes mounted on
// beehives, archives it, and serves a dashboard for beekeepers:
//   - MQTT ingest of node telemetry (temperature, humidity, weight, GPS)
//   - SQLite archive with optional InfluxDB mirror
//   - REST API and live WebSocket stream for the web dashboard
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/smartbee-iot/smartbee-core/migrations"

	"github.com/smartbee-iot/smartbee-core/internal/api"
	"github.com/smartbee-iot/smartbee-core/internal/apiary"
	"github.com/smartbee-iot/smartbee-core/internal/auth"
	"github.com/smartbee-iot/smartbee-core/internal/infrastructure/config"
	"github.com/smartbee-iot/smartbee-core/internal/infrastructure/database"
	"github.com/smartbee-iot/smartbee-core/internal/infrastructure/influxdb"
	"github.com/smartbee-iot/smartbee-core/internal/infrastructure/logging"
	"github.com/smartbee-iot/smartbee-core/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error { //nolint:gocognit // startup sequence: wiring + defer chain
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting SmartBee Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Wire up stores and services
	accountStore := auth.NewStore(db.DB)
	accountService := auth.NewService(accountStore, log)
	apiaryStore := apiary.NewStore(db.DB)
	apiaryService := apiary.NewService(apiaryStore, accountStore, log)

	// Seed the bootstrap administrator on an empty database
	if _, seedErr := auth.SeedAdmin(ctx, accountStore, log); seedErr != nil {
		return fmt.Errorf("seeding admin account: %w", seedErr)
	}

	// Connect to MQTT broker (optional; the API still serves archived data)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled, telemetry ingest off")
	}

	// Connect to InfluxDB (optional mirror)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Create the API server; its hub is also the ingest broadcaster
	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log,
		Accounts: accountService,
		Apiary:   apiaryService,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Start telemetry ingest (requires MQTT)
	if mqttClient != nil {
		// The interface values must stay nil when the clients are nil;
		// a typed-nil mirror would defeat the ingestor's nil checks.
		var mirror apiary.TelemetryMirror
		if influxClient != nil {
			mirror = influxClient
		}

		ingestor := apiary.NewIngestor(
			apiaryStore,
			mqttClient,
			mirror,
			server.Hub(),
			byte(cfg.MQTT.QoS),
			log,
		)
		if startErr := ingestor.Start(); startErr != nil {
			return fmt.Errorf("starting telemetry ingest: %w", startErr)
		}
		defer func() {
			log.Info("stopping telemetry ingest")
			if stopErr := ingestor.Stop(); stopErr != nil {
				log.Error("error stopping ingest", "error", stopErr)
			}
		}()
	}

	// Start the API server
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. Telemetry ingest
	// 3. InfluxDB (if enabled)
	// 4. MQTT (if enabled)
	// 5. Database

	log.Info("SmartBee Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SMARTBEE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SMARTBEE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// The MQTT and InfluxDB clients may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
