package telemetry

import (
	"io"
	"log/slog"
	"os"
)

// InitLogger installs the default slog logger: text + debug locally, JSON + info elsewhere.
func InitLogger(env string) *slog.Logger {
	return initLogger(os.Stdout, env)
}

func initLogger(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if env == "local" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
