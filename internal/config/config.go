package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
	Report   ReportConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// EmailConfig holds SES configuration for report emails
type EmailConfig struct {
	AWSRegion string
	FromEmail string
	FromName  string
}

// ReportConfig holds report lifecycle configuration.
// AutoSubmit stores new reports directly in submitted status,
// skipping draft (deployment variant toggle).
type ReportConfig struct {
	AutoSubmit bool
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))
	autoSubmit, _ := strconv.ParseBool(getEnv("REPORT_AUTO_SUBMIT", "false"))

	config := &Config{
		AppMode: appMode,
		Port:    getEnv("PORT", "3000"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASS", ""),
			DBName:   getEnv("DB_NAME", "solidarite_maraude"),
		},
		JWT: JWTConfig{
			Secret:           getEnv("JWT_SECRET", "default_secret"),
			RefreshSecret:    getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
			AccessTokenMins:  accessMins,
			RefreshTokenDays: refreshDays,
		},
		Email: EmailConfig{
			AWSRegion: getEnv("AWS_REGION", "eu-west-3"),
			FromEmail: getEnv("SES_FROM_EMAIL", ""),
			FromName:  getEnv("SES_FROM_NAME", "Solidarité Maraude"),
		},
		Report: ReportConfig{
			AutoSubmit: autoSubmit,
		},
	}

	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://app.solidarite-maraude.fr"
	}
	return origins
}
