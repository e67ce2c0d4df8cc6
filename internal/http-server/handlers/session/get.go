package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/pebosi/zammad/internal/chat"
	"github.com/pebosi/zammad/internal/lib/api/response"
	"github.com/pebosi/zammad/internal/lib/sl"
)

// Get returns one session record.
func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.session")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("No session_id provided"))
			return
		}

		session, err := handler.Session(r.Context(), sessionID)
		if err != nil {
			if errors.Is(err, chat.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Session not found"))
				return
			}
			logger.Error("get session", slog.String("session_id", sessionID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to load session"))
			return
		}

		render.JSON(w, r, response.Ok(session))
	}
}
