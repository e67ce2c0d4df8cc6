package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/pebosi/zammad/internal/chat"
	"github.com/pebosi/zammad/internal/lib/api/cont"
	"github.com/pebosi/zammad/internal/lib/api/response"
	"github.com/pebosi/zammad/internal/lib/sl"
	"github.com/pebosi/zammad/internal/lib/validate"
)

type PickupRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	AgentID   string `json:"agent_id" validate:"required"`
}

// Pickup assigns a waiting session to the agent and starts it. Picking
// up a session that is no longer waiting is rejected and leaves the
// session unchanged.
func Pickup(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.session")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		if user := cont.GetUser(r.Context()); user != nil {
			logger = logger.With(slog.String("user", user.Username))
		}

		var req PickupRequest
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

		session, err := handler.PickupSession(r.Context(), req.SessionID, req.AgentID)
		if err != nil {
			writeTransitionError(w, r, logger, req.SessionID, err)
			return
		}

		render.JSON(w, r, response.Ok(session))
	}
}

func writeTransitionError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, sessionID string, err error) {
	var invalid *chat.InvalidTransitionError
	switch {
	case errors.Is(err, chat.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("Session not found"))
	case errors.As(err, &invalid):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error(invalid.Error()))
	default:
		logger.Error("session transition", slog.String("session_id", sessionID), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Failed to update session"))
	}
}
