package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/pebosi/zammad/internal/config"
	"github.com/pebosi/zammad/internal/http-server/handlers/agent"
	"github.com/pebosi/zammad/internal/http-server/handlers/availability"
	"github.com/pebosi/zammad/internal/http-server/handlers/errors"
	"github.com/pebosi/zammad/internal/http-server/handlers/message"
	"github.com/pebosi/zammad/internal/http-server/handlers/session"
	"github.com/pebosi/zammad/internal/http-server/handlers/setting"
	"github.com/pebosi/zammad/internal/http-server/middleware/authenticate"
	"github.com/pebosi/zammad/internal/http-server/middleware/timeout"
	"github.com/pebosi/zammad/internal/lib/sl"
	"github.com/pebosi/zammad/internal/ws"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	availability.Core
	agent.Core
	session.Core
	message.Core
	setting.Core
}

func New(conf *config.Config, log *slog.Logger, hub *ws.Hub, handler Handler) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Route("/api/v1", func(v1 chi.Router) {
		// visitor-facing surface, no authentication
		v1.Group(func(r chi.Router) {
			r.Use(timeout.Timeout(5))
			r.Use(render.SetContentType(render.ContentTypeJSON))

			r.Get("/chat/state", availability.State(log, handler))
			r.Route("/chat/session", func(r chi.Router) {
				r.Post("/", session.Create(log, handler))
				r.Get("/", session.Get(log, handler))
				r.Post("/join", session.Join(log, handler))
				r.Post("/leave", session.Leave(log, handler))
			})
			r.Route("/chat/message", func(r chi.Router) {
				r.Post("/", message.Send(log, handler))
				r.Get("/", message.List(log, handler))
			})
		})

		// agent-facing surface, API-key protected
		v1.Group(func(r chi.Router) {
			r.Use(timeout.Timeout(5))
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Use(authenticate.New(log, handler))

			r.Route("/agent", func(r chi.Router) {
				r.Post("/heartbeat", agent.Heartbeat(log, handler))
				r.Post("/update", agent.Update(log, handler))
				r.Get("/presence", agent.Presence(log, handler))
				r.Get("/dashboard", agent.Dashboard(log, handler))
				r.Get("/seats", agent.Seats(log, handler))
			})
			r.Route("/session", func(r chi.Router) {
				r.Post("/pickup", session.Pickup(log, handler))
				r.Post("/close", session.Close(log, handler))
			})
			r.Post("/setting/chat", setting.ChatEnabled(log, handler))
		})

		// websocket attach runs outside the timeout middleware; the
		// connection outlives any request deadline
		v1.Get("/chat/ws", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWs(hub, log, w, r)
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
