// Package mqtt provides the broker connection used to ingest field-node
// telemetry.
//
// SmartBee sensor nodes publish JSON readings to SmartBee/nodes/{id}/data.
// The backend subscribes to the wildcard pattern and persists every message
// it receives. The package wraps paho.mqtt.golang with connection state
// tracking, automatic re-subscription after reconnects, Last Will and
// Testament on SmartBee/system/status, and panic recovery around handlers.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil { ... }
//	defer client.Close()
//
//	topics := mqtt.Topics{}
//	client.Subscribe(topics.AllNodeData(), 1, func(topic string, payload []byte) error {
//	    nodeID := mqtt.NodeIDFromDataTopic(topic)
//	    return store(nodeID, payload)
//	})
package mqtt
