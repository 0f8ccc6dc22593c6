package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hallapmark/vaiki-backend/internal/cdnsign"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		ShutdownTimeout    string   `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // memory | postgres
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
		// TTL de las lecturas de catálogo cacheadas. Nunca aplica a URLs firmadas.
		CatalogTTL string `yaml:"catalog_ttl"`
	} `yaml:"cache"`

	// CloudFront: firma de URLs de reproducción.
	// Exactamente una de PrivateKeyFile / PrivateKeyContent.
	CloudFront struct {
		KeyPairID         string `yaml:"key_pair_id"`
		PrivateKeyFile    string `yaml:"private_key_file"`
		PrivateKeyContent string `yaml:"private_key_content"`
		Domain            string `yaml:"domain"`
		URLTTLSeconds     int    `yaml:"url_ttl_seconds"`
	} `yaml:"cloudfront"`

	// Rate limit por IP del endpoint de playback-url.
	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		MaxRequests int    `yaml:"max_requests"`
		Window      string `yaml:"window"`
	} `yaml:"rate"`

	Log struct {
		Level string `yaml:"level"` // debug | info | warn | error
	} `yaml:"log"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
		Seed    bool `yaml:"seed"`
	} `yaml:"flags"`
}

// Load lee el YAML en path y aplica defaults + overrides de entorno.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// Ruta de clave relativa => relativa al directorio del YAML
	if p := strings.TrimSpace(c.CloudFront.PrivateKeyFile); p != "" && !filepath.IsAbs(p) {
		c.CloudFront.PrivateKeyFile = filepath.Clean(filepath.Join(filepath.Dir(path), p))
	}

	return c.finish()
}

// LoadFromEnv arma la config sólo con variables de entorno (sin YAML).
// Es el modo de despliegue habitual en contenedores.
func LoadFromEnv() (*Config, error) {
	var c Config
	return c.finish()
}

func (c *Config) finish() (*Config, error) {
	c.applyDefaults()
	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Cache.CatalogTTL == "" {
		c.Cache.CatalogTTL = "30s"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "vaiki:"
	}
	if c.CloudFront.URLTTLSeconds == 0 {
		c.CloudFront.URLTTLSeconds = int(cdnsign.DefaultTTL / time.Second)
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 30
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvStr("SERVER_SHUTDOWN_TIMEOUT"); ok {
		c.Server.ShutdownTimeout = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	} else if v, ok := getEnvStr("DATABASE_URL"); ok {
		// alias heredado de los PaaS
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}
	if v, ok := getEnvStr("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}
	if v, ok := getEnvStr("CACHE_MEMORY_DEFAULT_TTL"); ok {
		c.Cache.Memory.DefaultTTL = v
	}
	if v, ok := getEnvStr("CACHE_CATALOG_TTL"); ok {
		c.Cache.CatalogTTL = v
	}

	// CLOUDFRONT
	if v, ok := getEnvStr("CLOUDFRONT_KEY_PAIR_ID"); ok {
		c.CloudFront.KeyPairID = strings.TrimSpace(v)
	}
	if v, ok := getEnvStr("CLOUDFRONT_PRIVATE_KEY_FILE"); ok {
		c.CloudFront.PrivateKeyFile = strings.TrimSpace(v)
	}
	if v, ok := getEnvStr("CLOUDFRONT_PRIVATE_KEY_CONTENT"); ok {
		// el PEM viene tal cual (con o sin saltos de línea); lo limpia cdnsign
		c.CloudFront.PrivateKeyContent = v
	}
	if v, ok := getEnvStr("CLOUDFRONT_DOMAIN"); ok {
		c.CloudFront.Domain = strings.TrimSpace(v)
	}
	if v, ok := getEnvInt("CLOUDFRONT_URL_TTL_SECONDS"); ok {
		c.CloudFront.URLTTLSeconds = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}

	// LOG
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(strings.TrimSpace(v))
	}

	// FLAGS
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}
	if v, ok := getEnvBool("FLAGS_SEED"); ok {
		c.Flags.Seed = v
	}
}

// Validate chequea enums y duraciones. La validación fina del bloque
// cloudfront la hace cdnsign.Bootstrap (una sola fuente de verdad).
func (c *Config) Validate() error {
	var errs []error

	for name, v := range map[string]string{
		"server.shutdown_timeout":            c.Server.ShutdownTimeout,
		"storage.postgres.conn_max_lifetime": c.Storage.Postgres.ConnMaxLifetime,
		"cache.memory.default_ttl":           c.Cache.Memory.DefaultTTL,
		"cache.catalog_ttl":                  c.Cache.CatalogTTL,
		"rate.window":                        c.Rate.Window,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	switch c.Storage.Driver {
	case "memory":
	case "postgres", "pg":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			errs = append(errs, errors.New("storage.dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q not supported (memory|postgres)", c.Storage.Driver))
	}

	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Cache.Redis.Addr) == "" {
			errs = append(errs, errors.New("cache.redis.addr is required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.kind %q not supported (memory|redis)", c.Cache.Kind))
	}

	if c.Rate.Enabled && c.Rate.MaxRequests < 1 {
		errs = append(errs, fmt.Errorf("rate.max_requests must be >= 1 (got %d)", c.Rate.MaxRequests))
	}

	if c.CloudFront.URLTTLSeconds < 0 {
		errs = append(errs, fmt.Errorf("cloudfront.url_ttl_seconds must be positive (got %d)", c.CloudFront.URLTTLSeconds))
	}

	return errors.Join(errs...)
}

// IsProd indica si app_env es prod.
func (c *Config) IsProd() bool { return strings.EqualFold(c.App.Env, "prod") }

// Duration parsea una duración ya validada; vacío o inválido => def.
func Duration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil && d > 0 {
		return d
	}
	return def
}

// SigningOptions traduce el bloque cloudfront a las opciones de cdnsign.
func (c *Config) SigningOptions() cdnsign.BootstrapOptions {
	return cdnsign.BootstrapOptions{
		Config: cdnsign.SigningConfig{
			KeyPairID:  c.CloudFront.KeyPairID,
			Domain:     c.CloudFront.Domain,
			DefaultTTL: time.Duration(c.CloudFront.URLTTLSeconds) * time.Second,
		},
		Source: cdnsign.KeySource{
			Content: c.CloudFront.PrivateKeyContent,
			File:    c.CloudFront.PrivateKeyFile,
		},
	}
}

// Resolve elige la fuente: path explícito, $CONFIG_PATH, configs/config.yaml
// si existe, y si no sólo entorno. envOnly fuerza LoadFromEnv.
func Resolve(path string, envOnly bool) (*Config, string, error) {
	if envOnly {
		c, err := LoadFromEnv()
		return c, "env", err
	}
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		if _, err := os.Stat(filepath.Join("configs", "config.yaml")); err == nil {
			path = filepath.Join("configs", "config.yaml")
		}
	}
	if path == "" {
		c, err := LoadFromEnv()
		return c, "env", err
	}
	c, err := Load(path)
	return c, path, err
}
