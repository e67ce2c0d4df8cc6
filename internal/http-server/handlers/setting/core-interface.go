package setting

import "context"

type Core interface {
	SetChatEnabled(ctx context.Context, enabled bool) error
}
