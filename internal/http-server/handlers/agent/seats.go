package agent

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

// Seats returns how many more chats the agent can accept, for routing
// decisions made by the caller. The value can be negative when capacity
// was lowered mid-flight.
func Seats(log *slog.Logger, handler Core) http.HandlerFunc {
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

		seats, err := handler.AgentAvailableSeats(r.Context(), agentID)
		if err != nil {
			if errors.Is(err, chat.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Agent not found"))
				return
			}
			logger.Error("agent seats", slog.String("agent_id", agentID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to compute seats"))
			return
		}

		render.JSON(w, r, response.Ok(map[string]int{"available_seats": seats}))
	}
}
