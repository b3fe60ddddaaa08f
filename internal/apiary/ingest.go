package apiary

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smartbee-iot/smartbee-core/internal/infrastructure/logging"
	"github.com/smartbee-iot/smartbee-core/internal/infrastructure/mqtt"
)

// ingestTimeout bounds the database write for a single message.
const ingestTimeout = 10 * time.Second

// MessageBus is the broker subscription surface the ingestor needs.
// Satisfied by *mqtt.Client.
type MessageBus interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// TelemetryMirror receives a copy of every ingested reading.
// Satisfied by *influxdb.Client.
type TelemetryMirror interface {
	WriteNodeTelemetry(nodeID string, fields map[string]interface{}, at time.Time)
}

// Broadcaster fans ingested messages out to live subscribers.
// Satisfied by the API layer's WebSocket hub.
type Broadcaster interface {
	BroadcastTelemetry(msg *TelemetryMessage)
}

// Ingestor subscribes to the node telemetry topic and archives every
// message it receives. The mirror and broadcaster are optional; a nil
// value disables that sink.
type Ingestor struct {
	store       Store
	bus         MessageBus
	mirror      TelemetryMirror
	broadcaster Broadcaster
	logger      *logging.Logger
	qos         byte
}

// NewIngestor creates the telemetry ingestor.
func NewIngestor(store Store, bus MessageBus, mirror TelemetryMirror, broadcaster Broadcaster, qos byte, logger *logging.Logger) *Ingestor {
	return &Ingestor{
		store:       store,
		bus:         bus,
		mirror:      mirror,
		broadcaster: broadcaster,
		logger:      logger.With("component", "ingest"),
		qos:         qos,
	}
}

// Start subscribes to SmartBee/nodes/+/data.
func (i *Ingestor) Start() error {
	topic := mqtt.Topics{}.AllNodeData()
	if err := i.bus.Subscribe(topic, i.qos, i.handleMessage); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}

	i.logger.Info("telemetry ingest started", "topic", topic)
	return nil
}

// Stop unsubscribes from the telemetry topic.
func (i *Ingestor) Stop() error {
	return i.bus.Unsubscribe(mqtt.Topics{}.AllNodeData())
}

// nodePayload is the JSON shape node firmware publishes. All readings are
// optional; nodes report whichever sensors they carry.
type nodePayload struct {
	NodeID      string   `json:"nodo_id"`
	Temperature *float64 `json:"temperatura"`
	Humidity    *float64 `json:"humedad"`
	Weight      *float64 `json:"peso"`
	Latitude    *float64 `json:"latitud"`
	Longitude   *float64 `json:"longitud"`
}

// handleMessage archives one telemetry message. A payload that is not
// valid JSON is still archived raw; only the parsed fields are lost.
func (i *Ingestor) handleMessage(topic string, payload []byte) error {
	msg := &TelemetryMessage{
		Topic:      topic,
		Payload:    string(payload),
		ReceivedAt: time.Now().UTC(),
	}

	var parsed nodePayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		i.logger.Warn("unparseable telemetry payload, archiving raw",
			"topic", topic, "error", err)
	} else {
		msg.Temperature = parsed.Temperature
		msg.Humidity = parsed.Humidity
		msg.Weight = parsed.Weight
		msg.Latitude = parsed.Latitude
		msg.Longitude = parsed.Longitude
		msg.NodeID = parsed.NodeID
	}

	// The topic is authoritative for the node id; the payload copy is a
	// fallback for nodes publishing through a gateway.
	if id := mqtt.NodeIDFromDataTopic(topic); id != "" {
		msg.NodeID = id
	}
	if msg.NodeID == "" {
		return fmt.Errorf("telemetry on %s carries no node id", topic)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	if err := i.store.InsertMessage(ctx, msg); err != nil {
		return fmt.Errorf("archiving telemetry from %s: %w", msg.NodeID, err)
	}

	if i.mirror != nil {
		if fields := mirrorFields(msg); len(fields) > 0 {
			i.mirror.WriteNodeTelemetry(msg.NodeID, fields, msg.ReceivedAt)
		}
	}

	if i.broadcaster != nil {
		i.broadcaster.BroadcastTelemetry(msg)
	}

	i.logger.Debug("telemetry archived", "node_id", msg.NodeID, "message_id", msg.ID)
	return nil
}

// mirrorFields flattens the parsed readings for the time-series mirror.
func mirrorFields(msg *TelemetryMessage) map[string]interface{} {
	fields := make(map[string]interface{})
	if msg.Temperature != nil {
		fields["temperatura"] = *msg.Temperature
	}
	if msg.Humidity != nil {
		fields["humedad"] = *msg.Humidity
	}
	if msg.Weight != nil {
		fields["peso"] = *msg.Weight
	}
	if msg.Latitude != nil {
		fields["latitud"] = *msg.Latitude
	}
	if msg.Longitude != nil {
		fields["longitud"] = *msg.Longitude
	}
	return fields
}
