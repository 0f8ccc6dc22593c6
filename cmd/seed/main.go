// seed carga el catálogo inicial en el store configurado. Es idempotente:
// cada tabla con filas se saltea.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hallapmark/vaiki-backend/internal/config"
	"github.com/hallapmark/vaiki-backend/internal/http/server"
	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
	"github.com/hallapmark/vaiki-backend/internal/store"
	"github.com/hallapmark/vaiki-backend/internal/store/seed"
)

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH o configs/config.yaml)")
		flagEnvOnly    = flag.Bool("env", false, "usar SOLO env")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
		flagMigrate    = flag.Bool("migrate", true, "aplicar migraciones antes de sembrar (postgres)")
		flagTimeout    = flag.Duration("timeout", time.Minute, "timeout total")
	)
	flag.Parse()

	if *flagEnvFile != "" {
		_ = godotenv.Load(*flagEnvFile)
	}
	cfg, source, err := config.Resolve(*flagConfigPath, *flagEnvOnly)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "vaiki-seed"})
	defer func() { _ = logger.Sync() }()
	lg := logger.Named("seed")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *flagTimeout)
	defer cancel()

	scfg := server.StoreConfig(cfg)
	scfg.Migrate = *flagMigrate
	repo, err := store.Open(ctx, scfg)
	if err != nil {
		lg.Fatal("open store", logger.Err(err))
	}
	defer func() { _ = repo.Close() }()

	if repo.Driver() == "memory" {
		lg.Warn("storage.driver=memory: the seed only lives in this process", logger.String("config", source))
	}

	res, err := seed.Run(ctx, repo, cfg.CloudFront.Domain)
	if err != nil {
		lg.Fatal("seed failed", logger.Err(err))
	}
	lg.Info("seed done",
		logger.Driver(repo.Driver()),
		logger.Int("categories", res.Categories),
		logger.Int("movies", res.Movies),
	)
}
