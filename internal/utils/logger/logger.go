package logger

import (
	"io"
	"os"

	"golang.org/x/exp/slog"
	"gopkg.in/natefinch/lumberjack.v2"

	"wesync/internal/app/server/config"
)

type options struct {
	file io.Writer
}

type Option func(*options)

// WithFile дублирует записи в JSON файл с ротацией
func WithFile(path string) Option {
	return func(o *options) {
		if path == "" {
			return
		}
		o.file = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		}
	}
}

func New(env string, opts ...Option) *slog.Logger {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	level := slog.LevelDebug
	var console slog.Handler
	switch env {
	case config.EnvLocal:
		console = newPrettyHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	case config.EnvProd:
		level = slog.LevelInfo
		console = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		console = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	if o.file == nil {
		return slog.New(console)
	}
	file := slog.NewJSONHandler(o.file, &slog.HandlerOptions{Level: level})
	return slog.New(fanout{console, file})
}

func setupPrettySlog() *slog.Logger {
	return slog.New(newPrettyHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
