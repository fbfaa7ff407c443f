package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Auth     AuthConfig
	Firebase FirebaseConfig
	Views    ViewsConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Env             string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	CookieSecure    bool
}

// DatabaseConfig selects the relational store. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver      string
	PostgresURL string
	SQLitePath  string
}

type MongoConfig struct {
	URI      string
	Database string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// FirebaseConfig is optional; without credentials Firebase login and image uploads are disabled
type FirebaseConfig struct {
	CredentialsPath string
	StorageBucket   string
}

type ViewsConfig struct {
	Cooldown      time.Duration
	MaxEntries    int
	SweepInterval time.Duration
}

// Load reads configuration from the environment, after an optional .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Env:             getEnv("ENV", "development"),
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
			CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),
			CookieSecure:    getBoolEnv("COOKIE_SECURE", false),
		},
		Database: DatabaseConfig{
			Driver:      getEnv("DB_DRIVER", "postgres"),
			PostgresURL: getEnv("POSTGRES_CONN_STR", ""),
			SQLitePath:  getEnv("SQLITE_PATH", "inkwell.db"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", ""),
			Database: getEnv("MONGO_DB", "inkwell"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getDurationEnv("TOKEN_TTL", 30*24*time.Hour),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			StorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),
		},
		Views: ViewsConfig{
			Cooldown:      getDurationEnv("VIEW_COOLDOWN", 20*time.Minute),
			MaxEntries:    getIntEnv("VIEW_MAX_ENTRIES", 100000),
			SweepInterval: getDurationEnv("VIEW_SWEEP_INTERVAL", 5*time.Minute),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are present
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_CONN_STR is required when DB_DRIVER=postgres")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Firebase.StorageBucket != "" && c.Firebase.CredentialsPath == "" {
		return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required when FIREBASE_STORAGE_BUCKET is set")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
