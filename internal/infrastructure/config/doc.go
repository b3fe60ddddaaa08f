// Package config handles loading and validating SmartBee Core configuration.
//
// Configuration is read from a YAML file, overlaid with SMARTBEE_* environment
// variables, and validated before the rest of the system starts. Sensitive
// values (broker credentials, InfluxDB tokens) should always be supplied via
// environment variables rather than committed to the config file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
