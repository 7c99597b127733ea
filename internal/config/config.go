package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv    string `mapstructure:"APP_ENV"`
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Security  SecurityConfig
	Chat      ChatConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Tracing   TracingConfig
	LogLevel  string `mapstructure:"LOG_LEVEL"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"SERVER_PORT"`
	Timeout         time.Duration `mapstructure:"SERVER_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SERVER_SHUTDOWN_TIMEOUT"`
}

type DatabaseConfig struct {
	// Driver is one of sqlite3, postgres or pgx.
	Driver          string `mapstructure:"DB_DRIVER"`
	DSN             string `mapstructure:"DB_DSN"`
	Host            string `mapstructure:"DB_HOST"`
	Port            string `mapstructure:"DB_PORT"`
	User            string `mapstructure:"DB_USER"`
	Password        string `mapstructure:"DB_PASSWORD"`
	Name            string `mapstructure:"DB_NAME"`
	SSLMode         string `mapstructure:"DB_SSL_MODE"`
	MaxOpenConns    int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `mapstructure:"DB_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type SecurityConfig struct {
	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	TokenTTL   time.Duration `mapstructure:"JWT_TTL"`
	BcryptCost int           `mapstructure:"BCRYPT_COST"`
}

type ChatConfig struct {
	APIKey  string `mapstructure:"OPENAI_API_KEY"`
	Model   string `mapstructure:"OPENAI_MODEL"`
	BaseURL string `mapstructure:"OPENAI_BASE_URL"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"RATE_LIMIT_REQUESTS"`
	Window   time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
}

type TracingConfig struct {
	ServiceName  string `mapstructure:"OTEL_SERVICE_NAME"`
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", "8001")
	v.SetDefault("SERVER_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second)
	v.SetDefault("DB_DRIVER", "sqlite3")
	v.SetDefault("DB_DSN", "file:cookingsecret.db?_foreign_keys=on")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("JWT_TTL", 7*24*time.Hour)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("OPENAI_MODEL", "gpt-4.1-mini")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Minute)
	v.SetDefault("OTEL_SERVICE_NAME", "cookingsecret")
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(".env file could not be loaded: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config

	cfg.AppEnv = v.GetString("APP_ENV")
	cfg.LogLevel = v.GetString("LOG_LEVEL")

	cfg.Server.Port = v.GetString("SERVER_PORT")
	cfg.Server.Timeout = v.GetDuration("SERVER_TIMEOUT")
	cfg.Server.ShutdownTimeout = v.GetDuration("SERVER_SHUTDOWN_TIMEOUT")

	cfg.Database.Driver = v.GetString("DB_DRIVER")
	cfg.Database.DSN = v.GetString("DB_DSN")
	cfg.Database.Host = v.GetString("DB_HOST")
	cfg.Database.Port = v.GetString("DB_PORT")
	cfg.Database.User = v.GetString("DB_USER")
	cfg.Database.Password = v.GetString("DB_PASSWORD")
	cfg.Database.Name = v.GetString("DB_NAME")
	cfg.Database.SSLMode = v.GetString("DB_SSL_MODE")
	cfg.Database.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	cfg.Database.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	cfg.Database.ConnMaxLifetime = v.GetInt("DB_CONN_MAX_LIFETIME")

	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetString("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")

	cfg.Security.JWTSecret = v.GetString("JWT_SECRET")
	cfg.Security.TokenTTL = v.GetDuration("JWT_TTL")
	cfg.Security.BcryptCost = v.GetInt("BCRYPT_COST")

	cfg.Chat.APIKey = v.GetString("OPENAI_API_KEY")
	cfg.Chat.Model = v.GetString("OPENAI_MODEL")
	cfg.Chat.BaseURL = v.GetString("OPENAI_BASE_URL")

	cfg.CORS.AllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.RateLimit.Requests = v.GetInt("RATE_LIMIT_REQUESTS")
	cfg.RateLimit.Window = v.GetDuration("RATE_LIMIT_WINDOW")

	cfg.Tracing.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.Tracing.OTLPEndpoint = v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case "sqlite3", "postgres", "pgx":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Security.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	return nil
}

// ConnectionString returns DB_DSN, or a libpq keyword string built from the
// individual DB_* settings for the postgres drivers.
func (d DatabaseConfig) ConnectionString() string {
	if d.Driver == "sqlite3" || d.Host == "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
