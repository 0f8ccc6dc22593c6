package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hallapmark/vaiki-backend/internal/cdnsign"
	"github.com/hallapmark/vaiki-backend/internal/config"
	"github.com/hallapmark/vaiki-backend/internal/http/server"
	"github.com/hallapmark/vaiki-backend/internal/metrics"
	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
)

var version = "dev"

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH o configs/config.yaml)")
		flagEnvOnly    = flag.Bool("env", false, "usar SOLO env (y .env si existe)")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
		flagPrint      = flag.Bool("print-config", false, "imprime config efectiva (sin secretos) y termina")
	)
	flag.Parse()

	if *flagEnvFile != "" {
		if err := godotenv.Load(*flagEnvFile); err == nil {
			log.Printf("dotenv: cargado %s", *flagEnvFile)
		}
	}

	cfg, source, err := config.Resolve(*flagConfigPath, *flagEnvOnly)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *flagPrint {
		printConfigSummary(cfg, source)
		return
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "vaiki-backend",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	lg := logger.Named("main")

	if err := run(cfg, source); err != nil {
		lg.Error("service stopped with error", logger.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, source string) error {
	lg := logger.Named("main")

	// Firma: sin clave válida no se sirve nada.
	issuer, err := cdnsign.Bootstrap(cfg.SigningOptions())
	if err != nil {
		metrics.SignerReady.Set(0)
		return fmt.Errorf("signing subsystem: %w", err)
	}
	lg.Info("signing subsystem ready",
		logger.KeyPairID(issuer.KeyPairID()),
		logger.String("domain", issuer.Domain()),
		logger.Duration(issuer.DefaultTTL()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.Build(ctx, server.Deps{Config: cfg, Issuer: issuer})
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			lg.Warn("cleanup error", logger.Err(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("service up",
			logger.String("addr", cfg.Server.Addr),
			logger.String("config", source),
			logger.String("env", cfg.App.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http: %w", err)
	case <-ctx.Done():
	}

	timeout := config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second)
	lg.Info("shutting down", logger.Duration(timeout))
	sctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func printConfigSummary(c *config.Config, source string) {
	keySrc := "none"
	switch {
	case c.CloudFront.PrivateKeyContent != "":
		keySrc = "inline (CLOUDFRONT_PRIVATE_KEY_CONTENT)"
	case c.CloudFront.PrivateKeyFile != "":
		keySrc = "file " + c.CloudFront.PrivateKeyFile
	}
	dsn := "(empty)"
	if c.Storage.DSN != "" {
		dsn = "(set)"
	}
	fmt.Printf(`config source: %s
app.env=%s
server.addr=%s cors=%v shutdown=%s
storage.driver=%s dsn=%s
cache.kind=%s catalog_ttl=%s redis.addr=%s redis.prefix=%s
cloudfront.key_pair_id=%s domain=%s url_ttl_seconds=%d key=%s
rate.enabled=%t max=%d window=%s
log.level=%s flags.migrate=%t flags.seed=%t
`,
		source,
		c.App.Env,
		c.Server.Addr, c.Server.CORSAllowedOrigins, c.Server.ShutdownTimeout,
		c.Storage.Driver, dsn,
		c.Cache.Kind, c.Cache.CatalogTTL, c.Cache.Redis.Addr, c.Cache.Redis.Prefix,
		c.CloudFront.KeyPairID, c.CloudFront.Domain, c.CloudFront.URLTTLSeconds, keySrc,
		c.Rate.Enabled, c.Rate.MaxRequests, c.Rate.Window,
		c.Log.Level, c.Flags.Migrate, c.Flags.Seed,
	)
}
