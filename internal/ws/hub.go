package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pebosi/zammad/internal/lib/sl"
)

var (
	// ErrClientNotConnected means the target client has no live
	// connection on this hub.
	ErrClientNotConnected = errors.New("client not connected")
	// ErrSendBufferFull means the client connection is too slow to
	// keep up and the payload was dropped.
	ErrSendBufferFull = errors.New("client send buffer full")
)

// ClientMessageHandler handles incoming WebSocket events from chat
// clients.
type ClientMessageHandler interface {
	HandleJoin(ctx context.Context, sessionID, clientID string) error
	HandleChatMessage(ctx context.Context, sessionID, clientID, body string) error
	HandleLeave(ctx context.Context, sessionID, clientID string) error
}

// Event represents a WebSocket event sent to chat clients.
type Event struct {
	Type string      `json:"type"` // "connected", "chat_message", "session_state"
	Data interface{} `json:"data"`
}

// Hub maintains the set of connected chat clients keyed by client id and
// delivers payloads to individual connections. It is the delivery
// transport behind the broadcast router; it never retries a delivery.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	handler    ClientMessageHandler
	log        *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log.With(sl.Module("ws.hub")),
	}
}

// SetHandler sets the handler for incoming client events.
func (h *Hub) SetHandler(handler ClientMessageHandler) {
	h.handler = handler
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			h.mu.Unlock()

			if h.handler != nil && client.session != "" {
				if err := h.handler.HandleLeave(context.Background(), client.session, client.id); err != nil {
					h.log.Warn("leave on disconnect failed",
						slog.String("client_id", client.id),
						slog.String("session_id", client.session),
						sl.Err(err),
					)
				}
			}
		}
	}
}

// Deliver sends a payload to one connected client. Delivery to an
// unknown or backlogged client fails immediately. The read lock is held
// across the send: unregister closes the send channel under the write
// lock, so a concurrent disconnect can never close the channel between
// the lookup and the send.
func (h *Hub) Deliver(clientID string, payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[clientID]
	if !ok {
		return fmt.Errorf("client %s: %w", clientID, ErrClientNotConnected)
	}

	select {
	case client.send <- payload:
		return nil
	default:
		return fmt.Errorf("client %s: %w", clientID, ErrSendBufferFull)
	}
}

// clientEvent represents an incoming WebSocket message from a chat
// client.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleClientMessage parses and dispatches an incoming message from a
// client connection.
func (h *Hub) HandleClientMessage(client *Client, raw []byte) {
	if h.handler == nil {
		return
	}

	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		h.log.Warn("failed to parse client ws message", sl.Err(err))
		return
	}

	switch event.Type {
	case "join":
		var data struct {
			SessionID string `json:"session_id"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil || data.SessionID == "" {
			return
		}
		if err := h.handler.HandleJoin(context.Background(), data.SessionID, client.id); err != nil {
			h.log.Error("failed to handle join",
				slog.String("client_id", client.id),
				slog.String("session_id", data.SessionID),
				sl.Err(err),
			)
			return
		}
		client.session = data.SessionID

	case "chat_message":
		var data struct {
			SessionID string `json:"session_id"`
			Body      string `json:"body"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			h.log.Warn("failed to parse chat_message data", sl.Err(err))
			return
		}
		if data.SessionID == "" || data.Body == "" {
			return
		}
		if err := h.handler.HandleChatMessage(context.Background(), data.SessionID, client.id, data.Body); err != nil {
			h.log.Error("failed to handle chat_message",
				slog.String("client_id", client.id),
				slog.String("session_id", data.SessionID),
				sl.Err(err),
			)
		}

	case "leave":
		var data struct {
			SessionID string `json:"session_id"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil || data.SessionID == "" {
			return
		}
		if err := h.handler.HandleLeave(context.Background(), data.SessionID, client.id); err != nil {
			h.log.Error("failed to handle leave",
				slog.String("client_id", client.id),
				slog.String("session_id", data.SessionID),
				sl.Err(err),
			)
			return
		}
		if client.session == data.SessionID {
			client.session = ""
		}
	}
}
