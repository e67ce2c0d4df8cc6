package agent

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/pebosi/zammad/internal/lib/api/response"
	"github.com/pebosi/zammad/internal/lib/sl"
)

// Dashboard returns the agent's workload view: queue depth, running
// count, the agent's own running sessions with transcripts, and the
// agent's presence flag. Used by agent clients on connect and reconnect.
func Dashboard(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.agent")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		agentID := r.URL.Query().Get("agent_id")
		if agentID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("No agent_id provided"))
			return
		}

		dashboard, err := handler.AgentDashboard(r.Context(), agentID)
		if err != nil {
			logger.Error("agent dashboard", slog.String("agent_id", agentID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to build dashboard"))
			return
		}

		render.JSON(w, r, response.Ok(dashboard))
	}
}
