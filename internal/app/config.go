package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/yungbote/continuity-backend/internal/data/db"
	"github.com/yungbote/continuity-backend/internal/observability"
	"github.com/yungbote/continuity-backend/internal/platform/locker"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
	"github.com/yungbote/continuity-backend/internal/platform/neo4jdb"
	"github.com/yungbote/continuity-backend/internal/platform/openai"
)

// Config is read from the environment without a prefix, e.g. PORT, POSTGRES_DSN.
type Config struct {
	Port         string `envconfig:"PORT" default:"5000"`
	LogMode      string `envconfig:"LOG_MODE" default:"development"`
	LogRedaction bool   `envconfig:"LOG_REDACTION_ENABLED" default:"true"`
	LogHashSalt  string `envconfig:"LOG_HASH_SALT"`
	Environment  string `envconfig:"ENVIRONMENT" default:"development"`
	Version      string `envconfig:"VERSION" default:"dev"`

	DBDriver         string `envconfig:"DB_DRIVER" default:"postgres"`
	PostgresDSN      string `envconfig:"POSTGRES_DSN"`
	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD"`
	PostgresName     string `envconfig:"POSTGRES_NAME" default:"continuity"`
	SQLitePath       string `envconfig:"SQLITE_PATH" default:"continuity.db"`
	AutoMigrate      bool   `envconfig:"AUTO_MIGRATE" default:"true"`

	JWTSecretKey   string        `envconfig:"JWT_SECRET_KEY"`
	AccessTokenTTL time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"720h"`
	CookieSecure   bool          `envconfig:"COOKIE_SECURE" default:"false"`
	FrontendURL    string        `envconfig:"FRONTEND_URL"`

	ReasoningAPIKey     string        `envconfig:"REASONING_API_KEY"`
	ReasoningBaseURL    string        `envconfig:"REASONING_BASE_URL"`
	ReasoningModel      string        `envconfig:"REASONING_MODEL"`
	ReasoningTimeout    time.Duration `envconfig:"REASONING_TIMEOUT" default:"120s"`
	ReasoningMaxRetries int           `envconfig:"REASONING_MAX_RETRIES" default:"0"`
	PromptsFile         string        `envconfig:"PROMPTS_FILE"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	LockTTL       time.Duration `envconfig:"LOCK_TTL" default:"30s"`
	LockWait      time.Duration `envconfig:"LOCK_WAIT" default:"30s"`

	Neo4jURI      string        `envconfig:"NEO4J_URI"`
	Neo4jUser     string        `envconfig:"NEO4J_USER" default:"neo4j"`
	Neo4jPassword string        `envconfig:"NEO4J_PASSWORD"`
	Neo4jDatabase string        `envconfig:"NEO4J_DATABASE"`
	Neo4jTimeout  time.Duration `envconfig:"NEO4J_TIMEOUT" default:"10s"`

	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"false"`

	OtelEnabled     bool    `envconfig:"OTEL_ENABLED" default:"false"`
	OtelServiceName string  `envconfig:"OTEL_SERVICE_NAME" default:"continuity"`
	OtelEndpoint    string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `envconfig:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"false"`
	OtelSampleRatio float64 `envconfig:"OTEL_SAMPLER_RATIO" default:"0.1"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment variables: %w", err)
	}
	return cfg, nil
}

// ValidateServe checks what the HTTP server needs beyond a database.
func (c Config) ValidateServe() error {
	var missing []string
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	if strings.TrimSpace(c.ReasoningAPIKey) == "" {
		missing = append(missing, "REASONING_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c Config) LoggerOptions() logger.Options {
	return logger.Options{
		Mode:             c.LogMode,
		DisableRedaction: !c.LogRedaction,
		HashSalt:         c.LogHashSalt,
	}
}

func (c Config) DBOptions() db.Options {
	return db.Options{
		Driver:           c.DBDriver,
		PostgresDSN:      c.PostgresDSN,
		PostgresHost:     c.PostgresHost,
		PostgresPort:     c.PostgresPort,
		PostgresUser:     c.PostgresUser,
		PostgresPassword: c.PostgresPassword,
		PostgresName:     c.PostgresName,
		SQLitePath:       c.SQLitePath,
	}
}

func (c Config) ReasoningOptions() openai.Options {
	return openai.Options{
		APIKey:     c.ReasoningAPIKey,
		BaseURL:    c.ReasoningBaseURL,
		Model:      c.ReasoningModel,
		Timeout:    c.ReasoningTimeout,
		MaxRetries: c.ReasoningMaxRetries,
	}
}

func (c Config) RedisOptions() locker.RedisOptions {
	return locker.RedisOptions{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		TTL:      c.LockTTL,
		Wait:     c.LockWait,
	}
}

func (c Config) Neo4jOptions() neo4jdb.Options {
	return neo4jdb.Options{
		URI:      c.Neo4jURI,
		User:     c.Neo4jUser,
		Password: c.Neo4jPassword,
		Database: c.Neo4jDatabase,
		Timeout:  c.Neo4jTimeout,
	}
}

func (c Config) OtelConfig() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: c.OtelServiceName,
		Environment: c.Environment,
		Version:     c.Version,
		Endpoint:    c.OtelEndpoint,
		Headers:     observability.ParseHeaders(c.OtelHeaders),
		Insecure:    c.OtelInsecure,
		SampleRatio: c.OtelSampleRatio,
	}
}

// FrontendOrigins splits FRONTEND_URL on commas.
func (c Config) FrontendOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
