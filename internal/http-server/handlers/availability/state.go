package availability

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/pebosi/zammad/internal/lib/api/response"
	"github.com/pebosi/zammad/internal/lib/sl"
)

// State reports whether live chat is currently offered. Clients poll
// this before showing the chat widget.
func State(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.availability")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("chat core not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Chat not available"))
			return
		}

		state, err := handler.SystemState(r.Context())
		if err != nil {
			logger.Error("system state", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to compute chat state"))
			return
		}

		render.JSON(w, r, response.Ok(state))
	}
}
