package agent

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/pebosi/zammad/internal/lib/api/response"
	"github.com/pebosi/zammad/internal/lib/sl"
	"github.com/pebosi/zammad/internal/lib/validate"
)

type HeartbeatRequest struct {
	AgentID    string `json:"agent_id" validate:"required"`
	Active     bool   `json:"active"`
	Concurrent int    `json:"concurrent" validate:"gte=0"`
}

// Heartbeat upserts the agent's presence record. The first heartbeat
// creates it with the declared capacity; later ones only refresh the
// active flag and timestamp.
func Heartbeat(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.agent")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req HeartbeatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if err := validate.Struct(&req); err != nil {
			logger.Error("invalid heartbeat request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		agent, err := handler.Heartbeat(r.Context(), req.AgentID, req.Active, req.Concurrent)
		if err != nil {
			logger.Error("heartbeat", slog.String("agent_id", req.AgentID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to record heartbeat"))
			return
		}

		render.JSON(w, r, response.Ok(agent))
	}
}
