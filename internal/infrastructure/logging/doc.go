// Package logging provides structured logging for SmartBee Core.
//
// It wraps the standard log/slog package so every component logs with the
// same default fields (service, version) and honours the level/format/output
// settings from config.yaml.
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 8080)
//	logger.Error("failed to connect", "error", err)
package logging
