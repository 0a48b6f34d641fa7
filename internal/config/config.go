package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Storage  StorageConfig
	OpenAI   OpenAIConfig
	Mailer   MailerConfig
	Scraper  ScraperConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// AuthConfig holds the shared-access credential and session settings.
// The password is lightweight shared-access control between two known
// users, not adversarial security; the server still validates it and
// issues session tokens rather than trusting the client.
type AuthConfig struct {
	SharedPassword string
	SessionTTL     time.Duration
}

// StorageConfig holds the binary-storage endpoint and the ordered list of
// bucket namespaces to probe on upload.
type StorageConfig struct {
	BaseURL string
	APIKey  string
	Buckets []string
}

// OpenAIConfig holds the AI image/text analysis settings.
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// MailerConfig holds the email notification endpoint settings.
type MailerConfig struct {
	Endpoint string
	APIKey   string
	To       string
}

// ScraperConfig holds the external scraper trigger endpoint.
type ScraperConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from a local .env file (if present) and the
// environment. It provides sensible defaults for development.
func Load() (*Config, error) {
	// Missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "homehunt")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("AUTH_SESSION_TTL", "24h")
	v.SetDefault("STORAGE_BUCKETS", "apartment-images,images,public")
	v.SetDefault("OPENAI_MODEL", "gpt-4o")
	v.SetDefault("SCRAPER_TIMEOUT", "90s")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")

	// Bind environment variables
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		Auth: AuthConfig{
			SharedPassword: v.GetString("AUTH_SHARED_PASSWORD"),
			SessionTTL:     v.GetDuration("AUTH_SESSION_TTL"),
		},
		Storage: StorageConfig{
			BaseURL: v.GetString("STORAGE_BASE_URL"),
			APIKey:  v.GetString("STORAGE_API_KEY"),
			Buckets: splitList(v.GetString("STORAGE_BUCKETS")),
		},
		OpenAI: OpenAIConfig{
			APIKey: v.GetString("OPENAI_API_KEY"),
			Model:  v.GetString("OPENAI_MODEL"),
		},
		Mailer: MailerConfig{
			Endpoint: v.GetString("MAILER_ENDPOINT"),
			APIKey:   v.GetString("MAILER_API_KEY"),
			To:       v.GetString("MAILER_TO"),
		},
		Scraper: ScraperConfig{
			Endpoint: v.GetString("SCRAPER_ENDPOINT"),
			Timeout:  v.GetDuration("SCRAPER_TIMEOUT"),
		},
		CORS: CORSConfig{
			Origins: splitList(v.GetString("CORS_ORIGINS")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	if c.Auth.SharedPassword == "" {
		return fmt.Errorf("AUTH_SHARED_PASSWORD is required")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("AUTH_SESSION_TTL must be positive")
	}

	if len(c.Storage.Buckets) == 0 {
		return fmt.Errorf("STORAGE_BUCKETS is required")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// splitList splits a comma-separated value into trimmed non-empty parts.
func splitList(raw string) []string {
	if raw == "" {
		return []string{}
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
