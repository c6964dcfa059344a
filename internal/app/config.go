package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MacMoment/coding/internal/data/db"
	"github.com/MacMoment/coding/internal/http/middleware"
	"github.com/MacMoment/coding/internal/jobs/worker"
	"github.com/MacMoment/coding/internal/platform/envutil"
	"github.com/MacMoment/coding/internal/platform/llm"
)

type Config struct {
	ServiceName string `validate:"required"`
	LogMode     string
	HTTPAddr    string `validate:"required"`

	DBDriver    string `validate:"oneof=postgres sqlite"`
	PostgresDSN string `validate:"required_if=DBDriver postgres"`
	SQLitePath  string

	JWTSecretKey string        `validate:"required,min=8"`
	TokenTTL     time.Duration `validate:"gt=0"`

	LLMAPIKey  string
	LLMBaseURL string        `validate:"required,url"`
	LLMTimeout time.Duration `validate:"gt=0"`

	WorkerConcurrency int           `validate:"min=1,max=64"`
	WorkerPoll        time.Duration `validate:"gt=0"`
	JobMaxAttempts    int           `validate:"min=1"`
	JobRetryDelay     time.Duration `validate:"gte=0"`
	JobStaleRunning   time.Duration `validate:"gt=0"`

	RedisAddr    string
	RedisChannel string `validate:"required"`

	MetricsEnabled bool
	MetricsAddr    string
	OtelEnabled    bool

	CORSAllowedOrigins []string `validate:"dive,required"`
	PricingFile        string
}

// LoadConfig reads the environment. Call Validate before using the result.
func LoadConfig() Config {
	return Config{
		ServiceName: envutil.String("SERVICE_NAME", "forgecraft-api"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		HTTPAddr:    envutil.String("HTTP_ADDR", ":8080"),

		DBDriver:    strings.ToLower(envutil.String("DB_DRIVER", db.DriverPostgres)),
		PostgresDSN: postgresDSN(),
		SQLitePath:  envutil.String("SQLITE_PATH", "forgecraft.db"),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),
		TokenTTL:     envutil.Seconds("ACCESS_TOKEN_TTL", 24*time.Hour),

		LLMAPIKey:  envutil.String("MEGALLM_API_KEY", ""),
		LLMBaseURL: envutil.String("MEGALLM_API_URL", llm.DefaultBaseURL),
		LLMTimeout: envutil.Seconds("LLM_TIMEOUT_SECONDS", 120*time.Second),

		WorkerConcurrency: envutil.Int("WORKER_CONCURRENCY", worker.DefaultConfig().Concurrency),
		WorkerPoll:        time.Duration(envutil.Int("WORKER_POLL_INTERVAL_MS", 1000)) * time.Millisecond,
		JobMaxAttempts:    envutil.Int("JOB_MAX_ATTEMPTS", worker.DefaultConfig().MaxAttempts),
		JobRetryDelay:     envutil.Seconds("JOB_RETRY_DELAY_SECONDS", worker.DefaultConfig().RetryDelay),
		JobStaleRunning:   envutil.Seconds("JOB_STALE_RUNNING_SECONDS", worker.DefaultConfig().StaleRunning),

		RedisAddr:    envutil.String("REDIS_ADDR", ""),
		RedisChannel: envutil.String("REDIS_CHANNEL", "forgecraft:events"),

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", false),
		MetricsAddr:    envutil.String("METRICS_ADDR", ""),
		OtelEnabled:    envutil.Bool("OTEL_ENABLED", false),

		CORSAllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", middleware.DefaultAllowedOrigins),
		PricingFile:        envutil.String("PRICING_FILE", ""),
	}
}

// postgresDSN prefers POSTGRES_DSN and falls back to the discrete POSTGRES_* variables.
func postgresDSN() string {
	if dsn := envutil.String("POSTGRES_DSN", ""); dsn != "" {
		return dsn
	}
	host := envutil.String("POSTGRES_HOST", "")
	if host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(envutil.String("POSTGRES_USER", "postgres"), envutil.String("POSTGRES_PASSWORD", "")),
		Host:     host + ":" + envutil.String("POSTGRES_PORT", "5432"),
		Path:     envutil.String("POSTGRES_NAME", "forgecraft"),
		RawQuery: "sslmode=" + envutil.String("POSTGRES_SSLMODE", "disable"),
	}
	return u.String()
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) DB() db.Config {
	return db.Config{Driver: c.DBDriver, DSN: c.PostgresDSN, SQLitePath: c.SQLitePath}
}

func (c Config) Worker() worker.Config {
	return worker.Config{
		Concurrency:  c.WorkerConcurrency,
		PollInterval: c.WorkerPoll,
		MaxAttempts:  c.JobMaxAttempts,
		RetryDelay:   c.JobRetryDelay,
		StaleRunning: c.JobStaleRunning,
	}
}

func (c Config) LLM() llm.Config {
	return llm.Config{APIKey: c.LLMAPIKey, BaseURL: c.LLMBaseURL, Timeout: c.LLMTimeout}
}
