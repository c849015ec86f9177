package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/alerts"
	"github.com/spec-kit/inventory-service/internal/api/dto"
	"github.com/spec-kit/inventory-service/internal/auth"
)

// AlertsHandler hosts alert subscriptions over a persistent duplex
// connection. The bearer token travels as the token query parameter of
// the upgrade request; identity resolution is the same as for HTTP
// calls, guest fallback included.
type AlertsHandler struct {
	engine   *alerts.Engine
	resolver *auth.Resolver
	logger   *zap.Logger
}

// NewAlertsHandler constructs handler.
func NewAlertsHandler(engine *alerts.Engine, resolver *auth.Resolver, logger *zap.Logger) *AlertsHandler {
	return &AlertsHandler{engine: engine, resolver: resolver, logger: logger}
}

// Upgrade gates the route to websocket upgrade requests.
func (h *AlertsHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// alertConn is the slice of the websocket connection the frame loop
// needs; *websocket.Conn satisfies it.
type alertConn interface {
	Query(key string, defaultValue ...string) string
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
}

// Handle serves one alert stream connection.
func (h *AlertsHandler) Handle() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		h.serve(conn)
	})
}

// serve runs the frame loop for one connection. A connection may carry
// several subscriptions, keyed by the client-chosen frame id; closing
// the socket cancels all of them.
func (h *AlertsHandler) serve(conn alertConn) {
	identity := h.resolver.Resolve(conn.Query("token"))

	// deferred in this order so disconnect cancels every
	// subscription before waiting for its forwarder to drain
	var wg sync.WaitGroup
	defer wg.Wait()
	connCtx, cancelAll := context.WithCancel(context.Background())
	defer cancelAll()

	writer := &connWriter{conn: conn}
	subscriptions := make(map[string]context.CancelFunc)

	for {
		var msg dto.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			h.logger.Debug("alert stream closed", zap.Error(err))
			return
		}

		switch msg.Type {
		case dto.WSTypeConnectionInit:
			_ = writer.Write(dto.WSMessage{Type: dto.WSTypeConnectionAck})

		case dto.WSTypeStart:
			var params dto.StartPayload
			if err := json.Unmarshal(msg.Payload, &params); err != nil {
				_ = writer.Write(errorFrame(msg.ID, "invalid start payload"))
				continue
			}
			if _, exists := subscriptions[msg.ID]; exists {
				_ = writer.Write(errorFrame(msg.ID, "subscription id already in use"))
				continue
			}

			subCtx, cancel := context.WithCancel(connCtx)
			subscriptions[msg.ID] = cancel

			stream := h.engine.Subscribe(subCtx, identity, params.Threshold)
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				for alert := range stream {
					payload, err := json.Marshal(alert)
					if err != nil {
						continue
					}
					if err := writer.Write(dto.WSMessage{Type: dto.WSTypeData, ID: id, Payload: payload}); err != nil {
						return
					}
				}
			}(msg.ID)

		case dto.WSTypeStop:
			if cancel, ok := subscriptions[msg.ID]; ok {
				cancel()
				delete(subscriptions, msg.ID)
			}
		}
	}
}

func errorFrame(id, message string) dto.WSMessage {
	payload, _ := json.Marshal(fiber.Map{"message": message})
	return dto.WSMessage{Type: dto.WSTypeError, ID: id, Payload: payload}
}

// connWriter serializes frame writes; subscription goroutines share
// the connection with the read loop's ack/error responses.
type connWriter struct {
	mu   sync.Mutex
	conn alertConn
}

func (w *connWriter) Write(msg dto.WSMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(msg)
}
