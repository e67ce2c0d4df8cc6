package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// SetupLogger builds the root slog logger for the given environment.
// Local runs log human-readable text to stdout; dev and prod log JSON,
// additionally teeing into a log file under logPath when it is writable.
func SetupLogger(env, logPath string) *slog.Logger {
	var out io.Writer = os.Stdout

	if env != envLocal && logPath != "" {
		file, err := os.OpenFile(
			filepath.Join(logPath, "zammad-chat.log"),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			0o644,
		)
		if err == nil {
			out = io.MultiWriter(os.Stdout, file)
		}
	}

	switch env {
	case envDev:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
