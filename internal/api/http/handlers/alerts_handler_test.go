package handlers

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/alerts"
	"github.com/spec-kit/inventory-service/internal/api/dto"
	"github.com/spec-kit/inventory-service/internal/auth"
	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/repository/jsonstore"
)

// scriptedConn feeds the frame loop from a channel and captures every
// written frame, standing in for a websocket connection.
type scriptedConn struct {
	token    string
	inbound  chan dto.WSMessage
	outbound chan dto.WSMessage
}

func newScriptedConn(token string) *scriptedConn {
	return &scriptedConn{
		token:    token,
		inbound:  make(chan dto.WSMessage),
		outbound: make(chan dto.WSMessage, 64),
	}
}

func (c *scriptedConn) Query(key string, defaultValue ...string) string {
	if key == "token" {
		return c.token
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *scriptedConn) ReadJSON(v interface{}) error {
	msg, ok := <-c.inbound
	if !ok {
		return io.EOF
	}
	*(v.(*dto.WSMessage)) = msg
	return nil
}

func (c *scriptedConn) WriteJSON(v interface{}) error {
	c.outbound <- v.(dto.WSMessage)
	return nil
}

func (c *scriptedConn) send(t *testing.T, msg dto.WSMessage) {
	t.Helper()
	select {
	case c.inbound <- msg:
	case <-time.After(time.Second):
		t.Fatal("frame loop stopped reading")
	}
}

func (c *scriptedConn) nextFrame(t *testing.T) dto.WSMessage {
	t.Helper()
	select {
	case msg := <-c.outbound:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return dto.WSMessage{}
	}
}

func newAlertsHandler(t *testing.T) (*AlertsHandler, *jsonstore.Store) {
	t.Helper()
	store, err := jsonstore.New("", nil)
	require.NoError(t, err)

	logger := zap.NewNop()
	engine := alerts.NewEngine(store, 10*time.Millisecond, nil, logger)
	resolver := auth.NewResolver(auth.NewTokenManager("test-secret", time.Hour), logger)
	return NewAlertsHandler(engine, resolver, logger), store
}

func startPayload(t *testing.T, threshold int) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(dto.StartPayload{Threshold: threshold})
	require.NoError(t, err)
	return payload
}

func TestAlertStreamProtocol(t *testing.T) {
	handler, store := newAlertsHandler(t)
	require.NoError(t, store.Add(context.Background(), &domain.Product{ID: "low", Name: "Laptop", Quantity: 1}))

	// a malformed token degrades to guest; guests may subscribe
	conn := newScriptedConn("garbage")
	done := make(chan struct{})
	go func() {
		handler.serve(conn)
		close(done)
	}()

	conn.send(t, dto.WSMessage{Type: dto.WSTypeConnectionInit})
	ack := conn.nextFrame(t)
	assert.Equal(t, dto.WSTypeConnectionAck, ack.Type)

	conn.send(t, dto.WSMessage{Type: dto.WSTypeStart, ID: "sub-1", Payload: startPayload(t, 5)})

	// level-triggered: the same product alerts on consecutive cycles
	for i := 0; i < 2; i++ {
		frame := conn.nextFrame(t)
		require.Equal(t, dto.WSTypeData, frame.Type)
		assert.Equal(t, "sub-1", frame.ID)

		var alert alerts.StockAlert
		require.NoError(t, json.Unmarshal(frame.Payload, &alert))
		assert.Equal(t, "low", alert.ProductID)
		assert.Equal(t, 1, alert.CurrentQuantity)
	}

	// stop ends the subscription; the stream goes quiet
	conn.send(t, dto.WSMessage{Type: dto.WSTypeStop, ID: "sub-1"})
drain:
	for {
		select {
		case <-conn.outbound:
		case <-time.After(100 * time.Millisecond):
			break drain
		}
	}
	select {
	case frame := <-conn.outbound:
		t.Fatalf("unexpected frame after stop: %+v", frame)
	case <-time.After(100 * time.Millisecond):
	}

	close(conn.inbound)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("frame loop did not exit on disconnect")
	}
}

func TestAlertStreamRejectsBadStartFrames(t *testing.T) {
	handler, _ := newAlertsHandler(t)

	conn := newScriptedConn("")
	done := make(chan struct{})
	go func() {
		handler.serve(conn)
		close(done)
	}()

	conn.send(t, dto.WSMessage{Type: dto.WSTypeStart, ID: "bad", Payload: json.RawMessage(`"nope"`)})
	frame := conn.nextFrame(t)
	assert.Equal(t, dto.WSTypeError, frame.Type)
	assert.Equal(t, "bad", frame.ID)

	conn.send(t, dto.WSMessage{Type: dto.WSTypeStart, ID: "dup", Payload: startPayload(t, 0)})
	conn.send(t, dto.WSMessage{Type: dto.WSTypeStart, ID: "dup", Payload: startPayload(t, 0)})
	frame = conn.nextFrame(t)
	assert.Equal(t, dto.WSTypeError, frame.Type)
	assert.Equal(t, "dup", frame.ID)

	close(conn.inbound)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("frame loop did not exit on disconnect")
	}
}
