package message

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/pebosi/zammad/internal/chat"
	"github.com/pebosi/zammad/internal/lib/api/response"
	"github.com/pebosi/zammad/internal/lib/sl"
	"github.com/pebosi/zammad/internal/lib/validate"
)

type SendRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	SenderID  string `json:"sender_id" validate:"required"`
	Body      string `json:"body" validate:"required"`
}

type SendResult struct {
	Message interface{} `json:"message"`
	Failed  []string    `json:"failed,omitempty"`
}

// Send records a message line and fans it out to every other participant
// of the session. When some deliveries fail the message is still saved
// and the response names the unreachable participant ids; retrying is
// the caller's call.
func Send(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.message")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req SendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if err := validate.Struct(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		msg, err := handler.SendMessage(r.Context(), req.SessionID, req.SenderID, req.Body)
		if err != nil {
			var partial *chat.PartialFailureError
			switch {
			case errors.As(err, &partial):
				logger.Warn("broadcast partially failed",
					slog.String("session_id", req.SessionID),
					slog.Int("failed", len(partial.Failed)),
				)
				render.JSON(w, r, response.Ok(SendResult{Message: msg, Failed: partial.Failed}))
			case errors.Is(err, chat.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Session not found"))
			default:
				logger.Error("send message", slog.String("session_id", req.SessionID), sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to send message"))
			}
			return
		}

		render.JSON(w, r, response.Ok(SendResult{Message: msg}))
	}
}
