package chat

import (
	"context"
	"log/slog"

	"github.com/pebosi/zammad/internal/lib/sl"
)

// Router fans a message out to every participant of a session except the
// sender. Each delivery is attempted independently; one failing recipient
// never aborts the others. This is fan-out, not transactional multicast.
type Router struct {
	sessions  *Manager
	transport Transport
	log       *slog.Logger
}

func NewRouter(sessions *Manager, transport Transport, log *slog.Logger) *Router {
	return &Router{
		sessions:  sessions,
		transport: transport,
		log:       log.With(sl.Module("chat.broadcast")),
	}
}

// Broadcast delivers payload to all participants of the session except
// excludeClientID. If some deliveries fail the remaining ones are still
// attempted and a PartialFailureError names the failing client ids; the
// caller decides whether to retry. There is no retry here.
func (r *Router) Broadcast(ctx context.Context, sessionID string, payload []byte, excludeClientID string) error {
	session, err := r.sessions.Session(ctx, sessionID)
	if err != nil {
		return err
	}

	var failed []string
	for _, clientID := range session.Participants {
		if clientID == excludeClientID {
			continue
		}
		if err := r.transport.Deliver(clientID, payload); err != nil {
			r.log.Warn("delivery failed",
				slog.String("session_id", sessionID),
				slog.String("client_id", clientID),
				sl.Err(err),
			)
			failed = append(failed, clientID)
		}
	}

	if len(failed) > 0 {
		return &PartialFailureError{SessionID: sessionID, Failed: failed}
	}
	return nil
}
