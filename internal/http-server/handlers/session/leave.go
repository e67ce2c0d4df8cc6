package session

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

type LeaveRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	ClientID  string `json:"client_id" validate:"required"`
}

// Leave unregisters a client from the session. Leaving a session the
// client never joined is a no-op.
func Leave(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.session")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req LeaveRequest
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

		if err := handler.LeaveSession(r.Context(), req.SessionID, req.ClientID); err != nil {
			if errors.Is(err, chat.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Session not found"))
				return
			}
			logger.Error("leave session", slog.String("session_id", req.SessionID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to leave session"))
			return
		}

		render.JSON(w, r, response.Ok(nil))
	}
}
