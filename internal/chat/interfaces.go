package chat

import (
	"context"
	"time"

	"github.com/pebosi/zammad/entity"
)

// AgentStore persists agent presence records. Absent records are reported
// as (nil, nil), matching the repository convention.
type AgentStore interface {
	UpsertAgent(ctx context.Context, agent *entity.ChatAgent) error
	GetAgent(ctx context.Context, agentID string) (*entity.ChatAgent, error)
	ListActiveAgents(ctx context.Context, since time.Time) ([]entity.ChatAgent, error)
}

// SessionStore persists chat sessions. AddParticipant and
// RemoveParticipant must be atomic set operations so concurrent mutations
// of the same session never lose an update; AddParticipant returns the
// resulting participant set, or nil if the session does not exist.
// UpdateSessionState only applies the change when the stored state still
// equals from, and reports whether it matched.
type SessionStore interface {
	CreateSession(ctx context.Context, session *entity.ChatSession) error
	GetSession(ctx context.Context, sessionID string) (*entity.ChatSession, error)
	AddParticipant(ctx context.Context, sessionID, clientID string) ([]string, error)
	RemoveParticipant(ctx context.Context, sessionID, clientID string) error
	UpdateSessionState(ctx context.Context, sessionID, from, to string) (bool, error)
	AssignAgent(ctx context.Context, sessionID, agentID string) error
	CountSessions(ctx context.Context, states []string, agentID string) (int, error)
	ListSessionsByAgent(ctx context.Context, agentID string, states []string) ([]entity.ChatSession, error)
}

// MessageStore persists chat messages.
type MessageStore interface {
	SaveChatMessage(ctx context.Context, msg *entity.ChatMessage) error
	ListChatMessages(ctx context.Context, sessionID string) ([]entity.ChatMessage, error)
}

// FlagStore exposes the chat feature flag.
type FlagStore interface {
	IsChatEnabled(ctx context.Context) (bool, error)
}

// Transport delivers a payload to one connected client. Delivery to a
// client that is not connected fails; the transport never retries.
type Transport interface {
	Deliver(clientID string, payload []byte) error
}
