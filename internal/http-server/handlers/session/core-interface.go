package session

import (
	"context"

	"github.com/pebosi/zammad/entity"
	"github.com/pebosi/zammad/internal/chat"
)

type Core interface {
	SystemState(ctx context.Context) (*chat.SystemState, error)
	CreateSession(ctx context.Context, clientID string, prefs map[string]interface{}) (*entity.ChatSession, error)
	Session(ctx context.Context, sessionID string) (*entity.ChatSession, error)
	JoinSession(ctx context.Context, sessionID, clientID string) ([]string, error)
	LeaveSession(ctx context.Context, sessionID, clientID string) error
	PickupSession(ctx context.Context, sessionID, agentID string) (*entity.ChatSession, error)
	CloseSession(ctx context.Context, sessionID string) error
}
