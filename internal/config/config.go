package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"

	UploadLocal = "local"
	UploadS3    = "s3"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr string

	DBDriver    string
	DBPath      string
	DatabaseURL string

	JWTSecret    string
	JWTExpiresIn time.Duration

	AdminEmail    string
	AdminPassword string

	UploadDriver   string
	UploadDir      string
	UploadMaxBytes int64
	BodyLimit      int

	S3 S3Config

	RateLimitMax    int
	RateLimitWindow time.Duration
	RedisURL        string

	CORSOrigins    string
	PublicDir      string
	AdminDir       string
	MetricsEnabled bool

	LogMode string
	LogFile string
}

type S3Config struct {
	Bucket   string
	Region   string
	Key      string
	Secret   string
	Endpoint string
	BaseURL  string
}

// Load reads a .env file when present and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests can supply their own values.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	var errs []error

	expires, err := parseDuration(get("JWT_EXPIRES_IN", "24h"))
	if err != nil {
		errs = append(errs, fmt.Errorf("JWT_EXPIRES_IN: %w", err))
	}
	window, err := parseDuration(get("RATE_LIMIT_WINDOW", "15m"))
	if err != nil {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_WINDOW: %w", err))
	}
	maxUpload, err := cast.ToInt64E(get("UPLOAD_MAX_BYTES", "5242880"))
	if err != nil {
		errs = append(errs, fmt.Errorf("UPLOAD_MAX_BYTES: %w", err))
	}
	bodyLimit, err := cast.ToIntE(get("BODY_LIMIT", "10485760"))
	if err != nil {
		errs = append(errs, fmt.Errorf("BODY_LIMIT: %w", err))
	}
	rateMax, err := cast.ToIntE(get("RATE_LIMIT_MAX", "100"))
	if err != nil {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_MAX: %w", err))
	}
	metrics, err := cast.ToBoolE(get("METRICS_ENABLED", "true"))
	if err != nil {
		errs = append(errs, fmt.Errorf("METRICS_ENABLED: %w", err))
	}

	port := get("PORT", "3000")
	cfg := Config{
		Addr:           ":" + strings.TrimPrefix(port, ":"),
		DBDriver:       get("DB_DRIVER", DriverSQLite),
		DBPath:         get("DB_PATH", "./database/jewelry.db"),
		DatabaseURL:    get("DATABASE_URL", ""),
		JWTSecret:      get("JWT_SECRET", ""),
		JWTExpiresIn:   expires,
		AdminEmail:     get("ADMIN_EMAIL", "admin@anuvataru.com"),
		AdminPassword:  get("ADMIN_PASSWORD", "admin123"),
		UploadDriver:   get("UPLOAD_DRIVER", UploadLocal),
		UploadDir:      get("UPLOAD_DIR", "./uploads"),
		UploadMaxBytes: maxUpload,
		BodyLimit:      bodyLimit,
		S3: S3Config{
			Bucket:   get("S3_BUCKET", ""),
			Region:   get("S3_REGION", "us-east-1"),
			Key:      get("S3_KEY", ""),
			Secret:   get("S3_SECRET", ""),
			Endpoint: get("S3_ENDPOINT", ""),
			BaseURL:  strings.TrimRight(get("S3_URL", ""), "/"),
		},
		RateLimitMax:    rateMax,
		RateLimitWindow: window,
		RedisURL:        get("REDIS_URL", ""),
		CORSOrigins:     get("CORS_ORIGINS", "*"),
		PublicDir:       get("PUBLIC_DIR", "./public"),
		AdminDir:        get("ADMIN_DIR", "./admin"),
		MetricsEnabled:  metrics,
		LogMode:         get("LOG_MODE", "development"),
		LogFile:         get("LOG_FILE", ""),
	}

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_DRIVER=pgx"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", cfg.DBDriver))
	}
	switch cfg.UploadDriver {
	case UploadLocal:
	case UploadS3:
		if cfg.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when UPLOAD_DRIVER=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("UPLOAD_DRIVER %q is not supported", cfg.UploadDriver))
	}

	return cfg, errors.Join(errs...)
}

// Validate checks settings that only matter when serving requests.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	return nil
}

// DSN returns the data source name for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		return c.DatabaseURL
	}
	return c.DBPath
}

// parseDuration accepts Go durations plus a day suffix ("7d").
func parseDuration(v string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", v)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	return d, nil
}
