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

type UpdateRequest struct {
	AgentID    string `json:"agent_id" validate:"required"`
	Active     bool   `json:"active"`
	Concurrent int    `json:"concurrent" validate:"gte=0"`
}

// Update replaces the agent's full presence record. This is the only
// path that changes declared capacity.
func Update(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.agent")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req UpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if err := validate.Struct(&req); err != nil {
			logger.Error("invalid update request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		agent, err := handler.UpdateAgent(r.Context(), req.AgentID, req.Active, req.Concurrent)
		if err != nil {
			logger.Error("update agent", slog.String("agent_id", req.AgentID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to update agent"))
			return
		}

		render.JSON(w, r, response.Ok(agent))
	}
}
