// Package apiary manages the beehive registry and its telemetry archive.
//
// It covers hive records (each owned by an account), sensor nodes and node
// types, and the telemetry messages field nodes publish over MQTT. The
// ingest pipeline subscribes to the broker, archives every reading to
// SQLite, mirrors it to InfluxDB when the mirror is enabled, and fans it
// out to connected dashboards over WebSocket.
package apiary
