package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/pebosi/zammad/entity"
)

// Accountant derives seat capacity and utilization on demand from the
// presence registry and the session store. Nothing here is cached or
// persisted, so the numbers cannot drift from ground truth.
type Accountant struct {
	registry *Registry
	sessions SessionStore
}

func NewAccountant(registry *Registry, sessions SessionStore) *Accountant {
	return &Accountant{
		registry: registry,
		sessions: sessions,
	}
}

var activeSessionStates = []string{entity.SessionStateWaiting, entity.SessionStateRunning}

// TotalSeats sums declared capacity over all present agents.
func (a *Accountant) TotalSeats(ctx context.Context, within time.Duration) (int, error) {
	agents, err := a.registry.ListActive(ctx, within)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, agent := range agents {
		total += agent.Concurrent
	}
	return total, nil
}

// ActiveChatCount counts waiting and running sessions platform-wide.
func (a *Accountant) ActiveChatCount(ctx context.Context) (int, error) {
	count, err := a.sessions.CountSessions(ctx, activeSessionStates, "")
	if err != nil {
		return 0, fmt.Errorf("count active sessions: %w", err)
	}
	return count, nil
}

// ActiveChatCountForAgent counts waiting and running sessions owned by
// one agent.
func (a *Accountant) ActiveChatCountForAgent(ctx context.Context, agentID string) (int, error) {
	count, err := a.sessions.CountSessions(ctx, activeSessionStates, agentID)
	if err != nil {
		return 0, fmt.Errorf("count active sessions for agent %s: %w", agentID, err)
	}
	return count, nil
}

// WaitingCount counts sessions still queued for pickup.
func (a *Accountant) WaitingCount(ctx context.Context) (int, error) {
	count, err := a.sessions.CountSessions(ctx, []string{entity.SessionStateWaiting}, "")
	if err != nil {
		return 0, fmt.Errorf("count waiting sessions: %w", err)
	}
	return count, nil
}

// RunningCount counts sessions currently being handled.
func (a *Accountant) RunningCount(ctx context.Context) (int, error) {
	count, err := a.sessions.CountSessions(ctx, []string{entity.SessionStateRunning}, "")
	if err != nil {
		return 0, fmt.Errorf("count running sessions: %w", err)
	}
	return count, nil
}

// AvailableSeats is TotalSeats minus ActiveChatCount. It can go negative
// when capacity shrinks while chats are in flight; callers must treat a
// negative value as zero admittable seats, not as an error.
func (a *Accountant) AvailableSeats(ctx context.Context, within time.Duration) (int, error) {
	total, err := a.TotalSeats(ctx, within)
	if err != nil {
		return 0, err
	}
	count, err := a.ActiveChatCount(ctx)
	if err != nil {
		return 0, err
	}
	return total - count, nil
}

// AgentAvailableSeats is the agent's declared capacity minus the sessions
// it currently owns, used by callers for per-agent routing decisions.
func (a *Accountant) AgentAvailableSeats(ctx context.Context, agentID string) (int, error) {
	agent, err := a.registry.GetAgent(ctx, agentID)
	if err != nil {
		return 0, err
	}
	count, err := a.ActiveChatCountForAgent(ctx, agentID)
	if err != nil {
		return 0, err
	}
	return agent.Concurrent - count, nil
}
