package agent

import (
	"context"

	"github.com/pebosi/zammad/entity"
	"github.com/pebosi/zammad/internal/chat"
)

type Core interface {
	Heartbeat(ctx context.Context, agentID string, active bool, capacity int) (*entity.ChatAgent, error)
	UpdateAgent(ctx context.Context, agentID string, active bool, capacity int) (*entity.ChatAgent, error)
	AgentPresence(ctx context.Context, agentID string) (bool, error)
	AgentAvailableSeats(ctx context.Context, agentID string) (int, error)
	AgentDashboard(ctx context.Context, agentID string) (*chat.AgentDashboard, error)
}
