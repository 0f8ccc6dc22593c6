// migrate aplica (up) o revierte (down [steps]) los scripts SQL embebidos del
// catálogo sobre el Postgres configurado.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hallapmark/vaiki-backend/internal/config"
	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
	"github.com/hallapmark/vaiki-backend/internal/store/pg"
)

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH o configs/config.yaml)")
		flagEnvOnly    = flag.Bool("env", false, "usar SOLO env")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
		flagTimeout    = flag.Duration("timeout", 2*time.Minute, "timeout total")
	)
	flag.Parse()

	// Positional args: [action] [steps]
	action := "up"
	steps := 0
	args := flag.Args()
	if len(args) >= 1 && args[0] != "" {
		action = strings.ToLower(args[0])
	}
	if len(args) >= 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			log.Fatalf("steps must be a non-negative integer, got %q", args[1])
		}
		steps = n
	}

	if *flagEnvFile != "" {
		_ = godotenv.Load(*flagEnvFile)
	}
	cfg, source, err := config.Resolve(*flagConfigPath, *flagEnvOnly)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Storage.Driver != "postgres" {
		log.Fatalf("storage.driver=%q: migrations only apply to postgres", cfg.Storage.Driver)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "vaiki-migrate"})
	defer func() { _ = logger.Sync() }()
	lg := logger.Named("migrate").With(logger.String("config", source), logger.Op(action))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *flagTimeout)
	defer cancel()

	st, err := pg.New(ctx, cfg.Storage.DSN, pg.PoolConfig{MaxOpenConns: 2})
	if err != nil {
		lg.Fatal("open postgres", logger.Err(err))
	}
	defer func() { _ = st.Close() }()

	var n int
	switch action {
	case "up":
		n, err = st.Migrate(ctx)
	case "down":
		n, err = st.MigrateDown(ctx, steps)
	default:
		lg.Fatal("unknown action, use: up | down [steps]")
	}
	if err != nil {
		lg.Fatal("migration failed", logger.Count(n), logger.Err(err))
	}
	lg.Info("migrations completed", logger.Count(n))
}
