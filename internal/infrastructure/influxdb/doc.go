// Package influxdb provides an optional time-series mirror for node
// telemetry.
//
// Every reading ingested from the MQTT broker is written to SQLite (the
// source of truth) and, when this mirror is enabled, also to InfluxDB for
// long-range charting. Writes are batched and non-blocking; a mirror
// outage never blocks ingest.
//
// Usage:
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without the mirror
//	}
//	defer client.Close()
//
//	client.WriteNodeTelemetry("NODO-001", fields, time.Now())
package influxdb
