package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported user store drivers
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	AppMode   string
	Port      string
	Database  DatabaseConfig
	JWT       JWTConfig
	Cookie    CookieConfig
	Admin     AdminConfig
	Cron      CronConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig holds user store configuration
type DatabaseConfig struct {
	Driver         string
	ConnectTimeout time.Duration

	// MongoDB
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// MySQL
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds session token configuration
type JWTConfig struct {
	Secret string
}

// CookieConfig holds session cookie configuration
type CookieConfig struct {
	Name     string
	Secure   bool
	SameSite string
	Domain   string
}

// AdminConfig holds the bootstrap administrator account
type AdminConfig struct {
	Name         string
	MobileNumber string
	Email        string
	Pin          string
}

// Enabled reports whether an admin account should be seeded
func (a AdminConfig) Enabled() bool {
	return a.Email != "" && a.MobileNumber != "" && a.Pin != ""
}

// CronConfig holds background job schedules
type CronConfig struct {
	PendingDigest string
}

// RateLimitConfig toggles the per-IP limiters
type RateLimitConfig struct {
	Enabled bool
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// .env is optional; production relies on the real environment
	_ = godotenv.Load()

	// trim spaces for Windows-edited .env files
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "5000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		Admin: AdminConfig{
			Name:         getEnv("ADMIN_NAME", "Administrator"),
			MobileNumber: getEnv("ADMIN_MOBILE", ""),
			Email:        getEnv("ADMIN_EMAIL", ""),
			Pin:          getEnv("ADMIN_PIN", ""),
		},
		Cron: CronConfig{
			PendingDigest: getEnv("PENDING_DIGEST_CRON", "0 9 * * *"),
		},
	}

	rateLimit, err := strconv.ParseBool(getEnv("RATE_LIMIT_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_ENABLED: %w", err)
	}
	config.RateLimit.Enabled = rateLimit

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverMongo, DriverMySQL, DriverMemory:
	default:
		return fmt.Errorf("invalid DB_DRIVER: '%s' (must be mongo, mysql or memory)", c.Database.Driver)
	}
	if c.IsProd() && c.Database.Driver == DriverMemory {
		return fmt.Errorf("DB_DRIVER=memory is not allowed in prod")
	}
	if c.IsProd() && c.JWT.Secret == defaultJWTSecret {
		return fmt.Errorf("PROD_JWT_SECRET must be set in prod")
	}
	return nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	timeout, err := time.ParseDuration(getEnv("DB_CONNECT_TIMEOUT", "10s"))
	if err != nil {
		timeout = 10 * time.Second
	}

	return DatabaseConfig{
		Driver:          strings.ToLower(getEnv("DB_DRIVER", DriverMongo)),
		ConnectTimeout:  timeout,
		MongoURI:        getEnv(prefix+"MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv(prefix+"MONGO_DB", "mfs"),
		MongoCollection: getEnv("MONGO_COLLECTION", "users"),
		Host:            getEnv(prefix+"DB_HOST", "localhost"),
		Port:            getEnv(prefix+"DB_PORT", "3306"),
		User:            getEnv(prefix+"DB_USER", "root"),
		Password:        getEnv(prefix+"DB_PASS", ""),
		DBName:          getEnv(prefix+"DB_NAME", "mfs"),
	}
}

const defaultJWTSecret = "default_secret"

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret: getEnv(prefix+"JWT_SECRET", getEnv("ACCESS_TOKEN_KEY", defaultJWTSecret)),
	}
}

// loadCookieConfig loads cookie config based on mode.
// Production cookies are cross-site (SameSite=None) and therefore Secure.
func loadCookieConfig(mode string) CookieConfig {
	secureDefault, sameSiteDefault := "false", "Strict"
	if mode == "prod" {
		secureDefault, sameSiteDefault = "true", "None"
	}

	secure, _ := strconv.ParseBool(getEnv(modePrefix(mode)+"COOKIE_SECURE", secureDefault))

	return CookieConfig{
		Name:     getEnv("COOKIE_NAME", "token"),
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", sameSiteDefault),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
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
		return "http://localhost:5173"
	}
	return origins
}
