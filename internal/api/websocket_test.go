package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smartbee-iot/smartbee-core/internal/apiary"
)

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocket_TelemetryPush(t *testing.T) {
	srv, router := testServer(t)
	ts := httptest.NewServer(router)
	defer ts.Close()

	conn := dialWS(t, ts)

	// Wait for the client to register before broadcasting.
	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered with the hub")
		}
		time.Sleep(10 * time.Millisecond)
	}

	temp := 34.2
	srv.hub.BroadcastTelemetry(&apiary.TelemetryMessage{
		NodeID:      "NODO-001",
		Topic:       "SmartBee/nodes/NODO-001/data",
		Payload:     `{"temperatura":34.2}`,
		Temperature: &temp,
		ReceivedAt:  time.Now().UTC(),
	})

	//nolint:errcheck // deadline on a test connection
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}

	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != WSTypeEvent || msg.EventType != wsEventTelemetry {
		t.Errorf("message = %+v, want telemetry event", msg)
	}
	payload, _ := msg.Payload.(map[string]any)
	if payload["nodo_id"] != "NODO-001" {
		t.Errorf("payload = %v, want nodo_id NODO-001", payload)
	}
}

func TestWebSocket_PingPong(t *testing.T) {
	_, router := testServer(t)
	ts := httptest.NewServer(router)
	defer ts.Close()

	conn := dialWS(t, ts)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping","id":"1"}`)); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	//nolint:errcheck // deadline on a test connection
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading pong: %v", err)
	}

	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != WSTypePong || msg.ID != "1" {
		t.Errorf("message = %+v, want pong with id 1", msg)
	}
}
