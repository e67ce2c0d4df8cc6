package setting

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/pebosi/zammad/internal/lib/api/cont"
	"github.com/pebosi/zammad/internal/lib/api/response"
	"github.com/pebosi/zammad/internal/lib/sl"
)

type ChatEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// ChatEnabled toggles the chat feature flag. A disabled flag wins over
// every other availability input.
func ChatEnabled(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.setting")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		if user := cont.GetUser(r.Context()); user != nil {
			logger = logger.With(slog.String("user", user.Username))
		}

		var req ChatEnabledRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if err := handler.SetChatEnabled(r.Context(), req.Enabled); err != nil {
			logger.Error("set chat enabled", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to update setting"))
			return
		}
		logger.Info("chat flag updated", slog.Bool("enabled", req.Enabled))

		render.JSON(w, r, response.Ok(map[string]bool{"enabled": req.Enabled}))
	}
}
