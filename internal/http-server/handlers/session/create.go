package session

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/pebosi/zammad/internal/chat"
	"github.com/pebosi/zammad/internal/lib/api/response"
	"github.com/pebosi/zammad/internal/lib/sl"
)

type CreateRequest struct {
	ClientID    string                 `json:"client_id"`
	Preferences map[string]interface{} `json:"preferences"`
}

// Create admits a new chat request. Admission is checked against the
// availability oracle first: a session is only opened while the system
// is online. The requesting client, when given, becomes the first
// participant.
func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.session")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		state, err := handler.SystemState(r.Context())
		if err != nil {
			logger.Error("system state", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to compute chat state"))
			return
		}
		if state.State != chat.StateOnline {
			logger.Debug("chat request rejected", slog.String("state", state.State))
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Ok(state))
			return
		}

		session, err := handler.CreateSession(r.Context(), req.ClientID, req.Preferences)
		if err != nil {
			logger.Error("create session", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to create session"))
			return
		}
		logger.Debug("session created", slog.String("session_id", session.SessionID))

		render.JSON(w, r, response.Ok(session))
	}
}
