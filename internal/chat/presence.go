package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pebosi/zammad/entity"
	"github.com/pebosi/zammad/internal/lib/sl"
)

// DefaultPresenceWindow is how recent an agent's heartbeat must be for
// the agent to count as present. There is no explicit disconnect event;
// aging out of this window is the only way a crashed agent client goes
// absent.
const DefaultPresenceWindow = 2 * time.Minute

// Registry tracks which agents are ready for live chat and their declared
// concurrency capacity.
type Registry struct {
	agents AgentStore
	log    *slog.Logger
}

func NewRegistry(agents AgentStore, log *slog.Logger) *Registry {
	return &Registry{
		agents: agents,
		log:    log.With(sl.Module("chat.presence")),
	}
}

// SetPresence upserts the presence record for agentID. A first heartbeat
// creates the record with the given capacity; later heartbeats only touch
// the active flag and timestamp. Capacity changes go through
// CreateOrUpdate.
func (r *Registry) SetPresence(ctx context.Context, agentID string, active bool, capacity int) (*entity.ChatAgent, error) {
	agent, err := r.agents.GetAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("get agent %s: %w", agentID, err)
	}

	now := time.Now()
	if agent == nil {
		agent = &entity.ChatAgent{
			AgentID:    agentID,
			Active:     active,
			Concurrent: capacity,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	} else {
		agent.Active = active
		agent.UpdatedAt = now
	}

	if err := r.agents.UpsertAgent(ctx, agent); err != nil {
		return nil, fmt.Errorf("upsert agent %s: %w", agentID, err)
	}

	r.log.Debug("presence updated",
		slog.String("agent_id", agentID),
		slog.Bool("active", active),
	)

	return agent, nil
}

// CreateOrUpdate replaces the full presence record, capacity included,
// and refreshes the heartbeat timestamp.
func (r *Registry) CreateOrUpdate(ctx context.Context, agentID string, active bool, capacity int) (*entity.ChatAgent, error) {
	agent, err := r.agents.GetAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("get agent %s: %w", agentID, err)
	}

	now := time.Now()
	if agent == nil {
		agent = &entity.ChatAgent{
			AgentID:   agentID,
			CreatedAt: now,
		}
	}
	agent.Active = active
	agent.Concurrent = capacity
	agent.UpdatedAt = now

	if err := r.agents.UpsertAgent(ctx, agent); err != nil {
		return nil, fmt.Errorf("upsert agent %s: %w", agentID, err)
	}
	return agent, nil
}

// GetPresence returns the agent's active flag. An agent that has never
// registered yields ErrNotFound, which is distinct from active=false.
func (r *Registry) GetPresence(ctx context.Context, agentID string) (bool, error) {
	agent, err := r.agents.GetAgent(ctx, agentID)
	if err != nil {
		return false, fmt.Errorf("get agent %s: %w", agentID, err)
	}
	if agent == nil {
		return false, fmt.Errorf("agent %s: %w", agentID, ErrNotFound)
	}
	return agent.Active, nil
}

// GetAgent returns the full presence record or ErrNotFound.
func (r *Registry) GetAgent(ctx context.Context, agentID string) (*entity.ChatAgent, error) {
	agent, err := r.agents.GetAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("get agent %s: %w", agentID, err)
	}
	if agent == nil {
		return nil, fmt.Errorf("agent %s: %w", agentID, ErrNotFound)
	}
	return agent, nil
}

// ListActive returns agents that are active and have heartbeated within
// the window. A non-positive window falls back to DefaultPresenceWindow.
func (r *Registry) ListActive(ctx context.Context, within time.Duration) ([]entity.ChatAgent, error) {
	if within <= 0 {
		within = DefaultPresenceWindow
	}
	agents, err := r.agents.ListActiveAgents(ctx, time.Now().Add(-within))
	if err != nil {
		return nil, fmt.Errorf("list active agents: %w", err)
	}
	return agents, nil
}
