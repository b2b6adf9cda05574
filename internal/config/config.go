package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all memberauth configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig holds the account store connection settings.
type DatabaseConfig struct {
	DSN             string `yaml:"dsn"`
	MigrationsTable string `yaml:"migrations_table"`
}

// AuthConfig holds authentication and provisioning settings.
type AuthConfig struct {
	// AdminEmail is provisioned with ADMIN and USER roles. Compared case-sensitively.
	AdminEmail     string        `yaml:"admin_email"`
	PasswordScheme string        `yaml:"password_scheme"`
	TokenSecret    string        `yaml:"token_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: DatabaseConfig{MigrationsTable: "schema_migrations"},
		Auth: AuthConfig{
			PasswordScheme: "bcrypt",
			TokenTTL:       15 * time.Minute,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads defaults, then the YAML file at path (if non-empty), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Database.DSN = getEnv("MEMBERAUTH_PG_DSN", cfg.Database.DSN)
	cfg.Database.MigrationsTable = getEnv("MEMBERAUTH_MIGRATIONS_TABLE", cfg.Database.MigrationsTable)
	cfg.Auth.AdminEmail = getEnv("MEMBERAUTH_ADMIN_EMAIL", cfg.Auth.AdminEmail)
	cfg.Auth.PasswordScheme = getEnv("MEMBERAUTH_PASSWORD_SCHEME", cfg.Auth.PasswordScheme)
	cfg.Auth.TokenSecret = getEnv("MEMBERAUTH_TOKEN_SECRET", cfg.Auth.TokenSecret)
	cfg.Auth.TokenTTL = getEnvDuration("MEMBERAUTH_TOKEN_TTL", cfg.Auth.TokenTTL)
	cfg.Log.Level = getEnv("MEMBERAUTH_LOG_LEVEL", cfg.Log.Level)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Auth.PasswordScheme {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("unsupported password scheme %q", c.Auth.PasswordScheme)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if !isIdentifier(c.Database.MigrationsTable) {
		return fmt.Errorf("invalid migrations table %q", c.Database.MigrationsTable)
	}
	return nil
}

// isIdentifier accepts lower-case SQL identifiers; the migrations table name is spliced into DDL.
func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
