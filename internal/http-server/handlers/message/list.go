package message

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/pebosi/zammad/internal/lib/api/response"
	"github.com/pebosi/zammad/internal/lib/sl"
)

// List returns a session's transcript in creation order.
func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.message")

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

		messages, err := handler.SessionMessages(r.Context(), sessionID)
		if err != nil {
			logger.Error("list messages", slog.String("session_id", sessionID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list messages"))
			return
		}

		render.JSON(w, r, response.Ok(messages))
	}
}
