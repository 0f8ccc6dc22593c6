package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configura el logger.
type Config struct {
	// Env: "prod" escribe JSON; cualquier otro valor, consola legible.
	Env string

	// Level: "debug", "info", "warn", "error". Default "info".
	Level string

	// ServiceName se agrega como campo "service" si no está vacío.
	ServiceName string

	// Version se agrega como campo "version" si no está vacío.
	Version string

	// Output reemplaza stderr (tests, CLI). Opcional.
	Output io.Writer
}

func build(cfg Config) *zap.Logger {
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	var out zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if cfg.Output != nil {
		out = zapcore.AddSync(cfg.Output)
	}

	opts := []zap.Option{zap.AddCaller()}
	var enc zapcore.Encoder
	if strings.EqualFold(cfg.Env, "prod") {
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeCaller = zapcore.ShortCallerEncoder
		enc = zapcore.NewJSONEncoder(ec)
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		ec.EncodeCaller = zapcore.ShortCallerEncoder
		if cfg.Output == nil {
			ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		enc = zapcore.NewConsoleEncoder(ec)
	}

	l := zap.New(zapcore.NewCore(enc, out, level), opts...)
	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}
	if cfg.Version != "" {
		l = l.With(zap.String("version", cfg.Version))
	}
	return l
}

func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
