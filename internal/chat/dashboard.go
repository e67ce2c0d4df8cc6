package chat

import (
	"context"
	"errors"

	"github.com/pebosi/zammad/entity"
)

// SessionTranscript is a session with its messages expanded in creation
// order.
type SessionTranscript struct {
	entity.ChatSession
	Messages []entity.ChatMessage `json:"messages"`
}

// AgentDashboard is the read model an agent client loads on connect or
// reconnect: queue depth, running-chat count, the agent's own running
// sessions with transcripts, and the agent's own presence flag.
type AgentDashboard struct {
	WaitingCount   int                 `json:"waiting_count"`
	RunningCount   int                 `json:"running_count"`
	ActiveSessions []SessionTranscript `json:"active_sessions"`
	Active         bool                `json:"active"`
}

// Reporter composes dashboards from the registry, accountant and session
// manager. Composition only, no new chat logic.
type Reporter struct {
	registry *Registry
	seats    *Accountant
	sessions *Manager
}

func NewReporter(registry *Registry, seats *Accountant, sessions *Manager) *Reporter {
	return &Reporter{
		registry: registry,
		seats:    seats,
		sessions: sessions,
	}
}

// AgentDashboard builds the dashboard for one agent. An agent that has
// never registered presence shows as inactive rather than failing.
func (r *Reporter) AgentDashboard(ctx context.Context, agentID string) (*AgentDashboard, error) {
	waiting, err := r.seats.WaitingCount(ctx)
	if err != nil {
		return nil, err
	}
	running, err := r.seats.RunningCount(ctx)
	if err != nil {
		return nil, err
	}

	active, err := r.registry.GetPresence(ctx, agentID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	sessions, err := r.sessions.ListSessionsForAgent(ctx, agentID, []string{entity.SessionStateRunning})
	if err != nil {
		return nil, err
	}

	transcripts := make([]SessionTranscript, 0, len(sessions))
	for _, session := range sessions {
		messages, err := r.sessions.Messages(ctx, session.SessionID)
		if err != nil {
			return nil, err
		}
		transcripts = append(transcripts, SessionTranscript{
			ChatSession: session,
			Messages:    messages,
		})
	}

	return &AgentDashboard{
		WaitingCount:   waiting,
		RunningCount:   running,
		ActiveSessions: transcripts,
		Active:         active,
	}, nil
}
