package chat

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/pebosi/zammad/entity"
	"github.com/pebosi/zammad/internal/lib/sl"
)

// legal forward transitions of the session state machine
var sessionTransitions = map[string]string{
	entity.SessionStateWaiting: entity.SessionStateRunning,
	entity.SessionStateRunning: entity.SessionStateClosed,
}

// Manager creates sessions, manages their participant sets and drives the
// waiting -> running -> closed lifecycle. Participant mutations go through
// atomic store operations, never whole-document rewrites.
type Manager struct {
	sessions SessionStore
	messages MessageStore
	log      *slog.Logger
}

func NewManager(sessions SessionStore, messages MessageStore, log *slog.Logger) *Manager {
	return &Manager{
		sessions: sessions,
		messages: messages,
		log:      log.With(sl.Module("chat.session")),
	}
}

// generateSessionID hashes the current high-resolution time together with
// a large random draw. Unique enough against accidental collision; the id
// is not a secret and needs no cryptographic strength.
func generateSessionID() string {
	seed := strconv.FormatInt(time.Now().UnixNano(), 10) +
		strconv.FormatInt(rand.Int63n(99_999_999_999_999), 10)
	sum := md5.Sum([]byte(seed))
	return hex.EncodeToString(sum[:])
}

// CreateSession opens a new session in the waiting state. ownerAgentID
// may be empty while the session queues. Initial participants are part
// of the same store write, so a failed create never leaves a session
// behind without its requesting client.
func (m *Manager) CreateSession(ctx context.Context, ownerAgentID string, prefs map[string]interface{}, participants ...string) (*entity.ChatSession, error) {
	session := &entity.ChatSession{
		SessionID:    generateSessionID(),
		AgentID:      ownerAgentID,
		State:        entity.SessionStateWaiting,
		Participants: append([]string{}, participants...),
		Preferences:  prefs,
		CreatedAt:    time.Now(),
	}
	if err := m.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	m.log.Debug("session created",
		slog.String("session_id", session.SessionID),
		slog.String("agent_id", ownerAgentID),
	)
	return session, nil
}

// Session returns the session or ErrNotFound.
func (m *Manager) Session(ctx context.Context, sessionID string) (*entity.ChatSession, error) {
	session, err := m.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return session, nil
}

// AddParticipant registers clientID on the session and returns the
// resulting participant set. Adding a client that is already registered
// is a no-op returning the set unchanged. With persist=false the addition
// only lives on the returned copy.
func (m *Manager) AddParticipant(ctx context.Context, sessionID, clientID string, persist bool) ([]string, error) {
	session, err := m.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.HasParticipant(clientID) {
		return session.Participants, nil
	}
	if !persist {
		return append(session.Participants, clientID), nil
	}

	participants, err := m.sessions.AddParticipant(ctx, sessionID, clientID)
	if err != nil {
		return nil, fmt.Errorf("add participant to session %s: %w", sessionID, err)
	}
	if participants == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return participants, nil
}

// RemoveParticipant unregisters clientID; removing an unknown client is a
// no-op.
func (m *Manager) RemoveParticipant(ctx context.Context, sessionID, clientID string) error {
	if _, err := m.Session(ctx, sessionID); err != nil {
		return err
	}
	if err := m.sessions.RemoveParticipant(ctx, sessionID, clientID); err != nil {
		return fmt.Errorf("remove participant from session %s: %w", sessionID, err)
	}
	return nil
}

// Transition moves the session to newState, rejecting anything off the
// waiting -> running -> closed path. On rejection the session is left
// unchanged.
func (m *Manager) Transition(ctx context.Context, sessionID, newState string) error {
	session, err := m.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	if sessionTransitions[session.State] != newState {
		return &InvalidTransitionError{
			SessionID: sessionID,
			From:      session.State,
			To:        newState,
		}
	}

	matched, err := m.sessions.UpdateSessionState(ctx, sessionID, session.State, newState)
	if err != nil {
		return fmt.Errorf("transition session %s: %w", sessionID, err)
	}
	if !matched {
		// lost a race against a concurrent transition
		return &InvalidTransitionError{
			SessionID: sessionID,
			From:      session.State,
			To:        newState,
		}
	}
	m.log.Debug("session transition",
		slog.String("session_id", sessionID),
		slog.String("from", session.State),
		slog.String("to", newState),
	)
	return nil
}

// Pickup assigns the session to an agent and starts it.
func (m *Manager) Pickup(ctx context.Context, sessionID, agentID string) (*entity.ChatSession, error) {
	if err := m.Transition(ctx, sessionID, entity.SessionStateRunning); err != nil {
		return nil, err
	}
	if err := m.sessions.AssignAgent(ctx, sessionID, agentID); err != nil {
		return nil, fmt.Errorf("assign session %s to agent %s: %w", sessionID, agentID, err)
	}
	return m.Session(ctx, sessionID)
}

// ListSessionsForAgent returns the agent's sessions in the given states,
// ascending by creation time. Used to reconstruct an agent's workload on
// reconnect.
func (m *Manager) ListSessionsForAgent(ctx context.Context, agentID string, states []string) ([]entity.ChatSession, error) {
	sessions, err := m.sessions.ListSessionsByAgent(ctx, agentID, states)
	if err != nil {
		return nil, fmt.Errorf("list sessions for agent %s: %w", agentID, err)
	}
	return sessions, nil
}

// SaveMessage appends an immutable message line to the session.
func (m *Manager) SaveMessage(ctx context.Context, sessionID, senderID, body string) (*entity.ChatMessage, error) {
	if _, err := m.Session(ctx, sessionID); err != nil {
		return nil, err
	}
	msg := &entity.ChatMessage{
		SessionID: sessionID,
		SenderID:  senderID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := m.messages.SaveChatMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message for session %s: %w", sessionID, err)
	}
	return msg, nil
}

// Messages returns the session's messages in creation order.
func (m *Manager) Messages(ctx context.Context, sessionID string) ([]entity.ChatMessage, error) {
	messages, err := m.messages.ListChatMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages for session %s: %w", sessionID, err)
	}
	return messages, nil
}
