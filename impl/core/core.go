package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pebosi/zammad/entity"
	"github.com/pebosi/zammad/internal/chat"
	"github.com/pebosi/zammad/internal/lib/sl"
	"github.com/pebosi/zammad/internal/ws"
)

// Repository is the persistence collaborator behind the chat core. The
// chat package consumes it through its narrower store interfaces; the
// extra methods here back authentication and the feature flag.
type Repository interface {
	chat.AgentStore
	chat.SessionStore
	chat.MessageStore

	IsChatEnabled(ctx context.Context) (bool, error)
	SetChatEnabled(ctx context.Context, enabled bool) error

	CheckApiKey(ctx context.Context, key string) (string, error)
	GenerateApiKey(ctx context.Context, username string) (string, error)
}

// Core wires the chat components together behind the HTTP and WebSocket
// surfaces.
type Core struct {
	repo      Repository
	transport chat.Transport

	registry *chat.Registry
	seats    *chat.Accountant
	oracle   *chat.Oracle
	sessions *chat.Manager
	router   *chat.Router
	reporter *chat.Reporter

	presenceWindow time.Duration
	log            *slog.Logger
}

func New(log *slog.Logger) *Core {
	return &Core{
		log: log.With(sl.Module("core")),
	}
}

func (c *Core) SetRepository(repo Repository) {
	c.repo = repo
}

func (c *Core) SetTransport(transport chat.Transport) {
	c.transport = transport
}

func (c *Core) SetPresenceWindow(window time.Duration) {
	c.presenceWindow = window
}

// Init builds the chat components. Both collaborators must be set first.
func (c *Core) Init() error {
	if c.repo == nil {
		return fmt.Errorf("core: repository not set")
	}
	if c.transport == nil {
		return fmt.Errorf("core: transport not set")
	}

	c.registry = chat.NewRegistry(c.repo, c.log)
	c.seats = chat.NewAccountant(c.registry, c.repo)
	c.oracle = chat.NewOracle(c.repo, c.registry, c.seats, c.presenceWindow)
	c.sessions = chat.NewManager(c.repo, c.repo, c.log)
	c.router = chat.NewRouter(c.sessions, c.transport, c.log)
	c.reporter = chat.NewReporter(c.registry, c.seats, c.sessions)
	return nil
}

// AuthenticateByToken resolves an API key to the agent account it
// belongs to.
func (c *Core) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	username, err := c.repo.CheckApiKey(context.Background(), token)
	if err != nil {
		return nil, fmt.Errorf("check api key: %w", err)
	}
	return &entity.UserAuth{
		Username: username,
		Token:    token,
	}, nil
}

// GenerateApiKey returns the API key for username, creating one on first
// use.
func (c *Core) GenerateApiKey(ctx context.Context, username string) (string, error) {
	return c.repo.GenerateApiKey(ctx, username)
}

// SystemState reports whether chat is currently offered.
func (c *Core) SystemState(ctx context.Context) (*chat.SystemState, error) {
	return c.oracle.SystemState(ctx)
}

// SetChatEnabled toggles the chat feature flag.
func (c *Core) SetChatEnabled(ctx context.Context, enabled bool) error {
	return c.repo.SetChatEnabled(ctx, enabled)
}

// Heartbeat records an agent's presence toggle. Capacity only applies on
// the first heartbeat; later changes go through UpdateAgent.
func (c *Core) Heartbeat(ctx context.Context, agentID string, active bool, capacity int) (*entity.ChatAgent, error) {
	return c.registry.SetPresence(ctx, agentID, active, capacity)
}

// UpdateAgent replaces an agent's presence record, capacity included.
func (c *Core) UpdateAgent(ctx context.Context, agentID string, active bool, capacity int) (*entity.ChatAgent, error) {
	return c.registry.CreateOrUpdate(ctx, agentID, active, capacity)
}

// AgentPresence returns the agent's active flag or chat.ErrNotFound.
func (c *Core) AgentPresence(ctx context.Context, agentID string) (bool, error) {
	return c.registry.GetPresence(ctx, agentID)
}

// AgentAvailableSeats returns how many more chats the agent can take.
func (c *Core) AgentAvailableSeats(ctx context.Context, agentID string) (int, error) {
	return c.seats.AgentAvailableSeats(ctx, agentID)
}

// AgentDashboard composes the read model an agent client loads on
// connect.
func (c *Core) AgentDashboard(ctx context.Context, agentID string) (*chat.AgentDashboard, error) {
	return c.reporter.AgentDashboard(ctx, agentID)
}

// CreateSession admits a new chat into the queue. When clientID is
// non-empty the requesting client is registered as the first participant
// within the same store write, so a failed admission consumes no seat.
func (c *Core) CreateSession(ctx context.Context, clientID string, prefs map[string]interface{}) (*entity.ChatSession, error) {
	var participants []string
	if clientID != "" {
		participants = append(participants, clientID)
	}
	return c.sessions.CreateSession(ctx, "", prefs, participants...)
}

// Session returns one session or chat.ErrNotFound.
func (c *Core) Session(ctx context.Context, sessionID string) (*entity.ChatSession, error) {
	return c.sessions.Session(ctx, sessionID)
}

// JoinSession registers clientID as a participant and returns the
// resulting participant set.
func (c *Core) JoinSession(ctx context.Context, sessionID, clientID string) ([]string, error) {
	return c.sessions.AddParticipant(ctx, sessionID, clientID, true)
}

// LeaveSession unregisters clientID from the session.
func (c *Core) LeaveSession(ctx context.Context, sessionID, clientID string) error {
	return c.sessions.RemoveParticipant(ctx, sessionID, clientID)
}

// PickupSession assigns a waiting session to an agent and starts it.
func (c *Core) PickupSession(ctx context.Context, sessionID, agentID string) (*entity.ChatSession, error) {
	return c.sessions.Pickup(ctx, sessionID, agentID)
}

// CloseSession completes a running session.
func (c *Core) CloseSession(ctx context.Context, sessionID string) error {
	return c.sessions.Transition(ctx, sessionID, entity.SessionStateClosed)
}

// SessionMessages returns a session's transcript in creation order.
func (c *Core) SessionMessages(ctx context.Context, sessionID string) ([]entity.ChatMessage, error) {
	return c.sessions.Messages(ctx, sessionID)
}

// SendMessage records the message and fans it out to every participant
// except the sender. A chat.PartialFailureError carries the client ids
// that could not be reached; the message itself is saved either way.
func (c *Core) SendMessage(ctx context.Context, sessionID, senderID, body string) (*entity.ChatMessage, error) {
	msg, err := c.sessions.SaveMessage(ctx, sessionID, senderID, body)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(ws.Event{
		Type: "chat_message",
		Data: msg,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat message: %w", err)
	}

	if err := c.router.Broadcast(ctx, sessionID, payload, senderID); err != nil {
		return msg, err
	}
	return msg, nil
}

// HandleJoin implements ws.ClientMessageHandler.
func (c *Core) HandleJoin(ctx context.Context, sessionID, clientID string) error {
	_, err := c.JoinSession(ctx, sessionID, clientID)
	return err
}

// HandleChatMessage implements ws.ClientMessageHandler. Partial delivery
// failures are logged, not surfaced: the slow or gone participants age
// out of the session through leave handling.
func (c *Core) HandleChatMessage(ctx context.Context, sessionID, clientID, body string) error {
	_, err := c.SendMessage(ctx, sessionID, clientID, body)

	var partial *chat.PartialFailureError
	if errors.As(err, &partial) {
		c.log.Warn("broadcast partially failed",
			slog.String("session_id", sessionID),
			slog.Int("failed", len(partial.Failed)),
		)
		return nil
	}
	return err
}

// HandleLeave implements ws.ClientMessageHandler.
func (c *Core) HandleLeave(ctx context.Context, sessionID, clientID string) error {
	err := c.LeaveSession(ctx, sessionID, clientID)
	if errors.Is(err, chat.ErrNotFound) {
		return nil
	}
	return err
}
