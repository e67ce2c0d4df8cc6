package message

import (
	"context"

	"github.com/pebosi/zammad/entity"
)

type Core interface {
	SendMessage(ctx context.Context, sessionID, senderID, body string) (*entity.ChatMessage, error)
	SessionMessages(ctx context.Context, sessionID string) ([]entity.ChatMessage, error)
}
