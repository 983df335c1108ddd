package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is built once at start-up and passed to the components that need it.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Storage  StorageConfig
	NATS     NATSConfig
	Redis    RedisConfig
	Log      LogConfig
}

// ServerConfig holds HTTP transport settings.
type ServerConfig struct {
	Port            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
	AllowedOrigins  []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// SessionConfig holds session signing and cookie settings.
type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	CookieSecure bool
	BcryptCost   int
}

// StorageConfig holds object storage settings.
type StorageConfig struct {
	BaseURL    string
	ServiceKey string
	Bucket     string
}

// NATSConfig is optional; an empty URL disables event publishing.
type NATSConfig struct {
	URL           string
	ClientID      string
	MaxReconnects int
	ReconnectWait time.Duration
}

// RedisConfig is optional; an empty Addr disables session revocation.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables. Every missing
// required variable is reported in a single error.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("HTTP_PORT", "8080"),
			RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			MaxUploadBytes:  int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),
			AllowedOrigins:  getEnvAsList("ALLOWED_ORIGINS"),
		},
		Database: loadDatabase(),
		Session: SessionConfig{
			Secret:       os.Getenv("JWT_SECRET"),
			TTL:          getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
			CookieSecure: getEnvAsBool("COOKIE_SECURE", false),
			BcryptCost:   getEnvAsInt("BCRYPT_COST", 10),
		},
		Storage: StorageConfig{
			BaseURL:    strings.TrimSuffix(os.Getenv("SUPABASE_URL"), "/"),
			ServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
			Bucket:     getEnv("STORAGE_BUCKET", "public-media"),
		},
		NATS: NATSConfig{
			URL:           os.Getenv("NATS_URL"),
			ClientID:      getEnv("NATS_CLIENT_ID", "social-media-app"),
			MaxReconnects: getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait: getEnvAsDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase reads only the database settings, for commands that need
// nothing else.
func LoadDatabase() (*DatabaseConfig, error) {
	cfg := loadDatabase()
	if cfg.URL == "" {
		return nil, fmt.Errorf("missing required configuration: DATABASE_URL")
	}
	return &cfg, nil
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		URL:          os.Getenv("DATABASE_URL"),
		MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
	}
}

// Validate checks the settings the auth, storage and data components
// cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.Session.Secret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Storage.BaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.Storage.ServiceKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Session.BcryptCost < 10 {
		return fmt.Errorf("BCRYPT_COST must be at least 10, got %d", c.Session.BcryptCost)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
