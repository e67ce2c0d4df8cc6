package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/pebosi/zammad/impl/core"
	"github.com/pebosi/zammad/internal/config"
	repository "github.com/pebosi/zammad/internal/database"
	"github.com/pebosi/zammad/internal/http-server/api"
	"github.com/pebosi/zammad/internal/lib/logger"
	"github.com/pebosi/zammad/internal/lib/sl"
	"github.com/pebosi/zammad/internal/ws"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	lg.Info("starting chat service", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.Error("mongo client", sl.Err(err))
		return
	}
	if db == nil {
		lg.Error("mongo is disabled; the chat service needs its store")
		return
	}
	lg.With(
		slog.String("host", conf.Mongo.Host),
		slog.String("port", conf.Mongo.Port),
		slog.String("database", conf.Mongo.Database),
	).Info("mongo client initialized")

	if err := db.EnsureChatIndexes(context.Background()); err != nil {
		lg.Error("ensure chat indexes", sl.Err(err))
	}

	hub := ws.NewHub(lg)
	go hub.Run()

	handler := core.New(lg)
	handler.SetRepository(db)
	handler.SetTransport(hub)
	handler.SetPresenceWindow(conf.Chat.PresenceWindow)
	if err := handler.Init(); err != nil {
		lg.Error("core init", sl.Err(err))
		return
	}
	hub.SetHandler(handler)

	agentKey, err := handler.GenerateApiKey(context.Background(), "agents")
	if err != nil {
		lg.Error("generate agent api key", sl.Err(err))
	} else {
		lg.With(sl.Secret("agent_key", agentKey)).Info("agent api key ready")
	}

	// *** blocking start with http server ***
	err = api.New(conf, lg, hub, handler)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
