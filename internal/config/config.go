package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Gateway  GatewayConfig
	Secrets  SecretsConfig
	Logger   LoggerConfig
	Metrics  MetricsConfig
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// GatewayConfig holds Authorize.Net configuration
type GatewayConfig struct {
	Mode    string // sandbox or production
	Timeout int    // Request timeout in seconds (default: 30)
}

// SecretsConfig selects the credential-at-rest backend. "db" reads the
// merchant_credentials table; "vault" and "aws" read a secret manager.
type SecretsConfig struct {
	Backend string // db, vault, aws, local

	VaultAddress   string
	VaultToken     string
	VaultMountPath string

	AWSRegion  string
	AWSProfile string

	LocalDir string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	Port string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "payment_orchestrator"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		},
		Gateway: GatewayConfig{
			Mode:    getEnv("AUTHNET_MODE", "sandbox"),
			Timeout: getEnvAsInt("AUTHNET_TIMEOUT", 30),
		},
		Secrets: SecretsConfig{
			Backend:        getEnv("SECRET_BACKEND", "db"),
			VaultAddress:   getEnv("VAULT_ADDR", ""),
			VaultToken:     getEnv("VAULT_TOKEN", ""),
			VaultMountPath: getEnv("VAULT_MOUNT_PATH", "secret"),
			AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
			AWSProfile:     getEnv("AWS_PROFILE", ""),
			LocalDir:       getEnv("LOCAL_SECRETS_DIR", ".secrets"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
		Metrics: MetricsConfig{
			Port: getEnv("METRICS_PORT", "9090"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Gateway.Mode != "sandbox" && cfg.Gateway.Mode != "production" {
		return nil, fmt.Errorf("AUTHNET_MODE must be sandbox or production, got %q", cfg.Gateway.Mode)
	}
	switch cfg.Secrets.Backend {
	case "db", "aws", "local":
	case "vault":
		if cfg.Secrets.VaultAddress == "" || cfg.Secrets.VaultToken == "" {
			return nil, fmt.Errorf("VAULT_ADDR and VAULT_TOKEN are required for the vault backend")
		}
	default:
		return nil, fmt.Errorf("SECRET_BACKEND must be db, vault, aws, or local, got %q", cfg.Secrets.Backend)
	}

	return cfg, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

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
