package availability

import (
	"context"

	"github.com/pebosi/zammad/internal/chat"
)

type Core interface {
	SystemState(ctx context.Context) (*chat.SystemState, error)
}
