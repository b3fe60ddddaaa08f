package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteNodeTelemetry mirrors a sensor reading from a field node.
//
// The write is non-blocking; points are batched and sent asynchronously.
// Readings are tagged by node so dashboards can filter per hive.
//
// Example:
//
//	client.WriteNodeTelemetry("NODO-001", map[string]interface{}{
//	    "temperatura": 34.2,
//	    "humedad":     61.0,
//	    "peso":        42.7,
//	}, time.Now())
func (c *Client) WriteNodeTelemetry(nodeID string, fields map[string]interface{}, at time.Time) {
	if !c.IsConnected() || len(fields) == 0 {
		return
	}

	point := write.NewPoint(
		"node_telemetry",
		map[string]string{
			"node_id": nodeID,
		},
		fields,
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WriteNodeStatus records a node availability transition (online/offline).
//
// Used by the ingest pipeline to track gaps in reporting.
func (c *Client) WriteNodeStatus(nodeID string, online bool) {
	if !c.IsConnected() {
		return
	}

	status := 0
	if online {
		status = 1
	}

	point := write.NewPoint(
		"node_status",
		map[string]string{
			"node_id": nodeID,
		},
		map[string]interface{}{
			"online": status,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
