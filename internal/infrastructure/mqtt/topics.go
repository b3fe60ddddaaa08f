package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the SmartBee broker namespace.
//
// Field nodes publish sensor readings to: SmartBee/nodes/{node_id}/data
// The payload is JSON produced by the node firmware.
const (
	// TopicPrefixNodes is the base for all field-node topics.
	TopicPrefixNodes = "SmartBee/nodes"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "SmartBee/system"
)

// Topics provides builders for SmartBee MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	dataTopic := topics.NodeData("NODO-001")
//	// Returns: "SmartBee/nodes/NODO-001/data"
type Topics struct{}

// NodeData returns the telemetry topic for a specific sensor node.
//
// Example: SmartBee/nodes/NODO-001/data
func (Topics) NodeData(nodeID string) string {
	return fmt.Sprintf("%s/%s/data", TopicPrefixNodes, nodeID)
}

// AllNodeData returns a pattern matching telemetry from every node.
//
// Pattern: SmartBee/nodes/+/data
func (Topics) AllNodeData() string {
	return fmt.Sprintf("%s/+/data", TopicPrefixNodes)
}

// SystemStatus returns the backend status topic.
//
// Example: SmartBee/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// NodeIDFromDataTopic extracts the node identifier from a telemetry topic.
// Returns "" if the topic does not match the expected shape.
//
//	NodeIDFromDataTopic("SmartBee/nodes/NODO-001/data") // "NODO-001"
func NodeIDFromDataTopic(topic string) string {
	rest, ok := strings.CutPrefix(topic, TopicPrefixNodes+"/")
	if !ok {
		return ""
	}
	nodeID, ok := strings.CutSuffix(rest, "/data")
	if !ok || nodeID == "" || strings.Contains(nodeID, "/") {
		return ""
	}
	return nodeID
}
