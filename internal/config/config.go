package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/crypto/bcrypt"
)

// EnvProduction is the APP_ENV value that disables debug output such as stack traces.
const EnvProduction = "production"

var defaultOrigins = []string{
	"http://localhost",
	"http://localhost:3000",
	"http://localhost:5000",
	"http://localhost:5173",
	"http://localhost:5174",
}

// Config holds the application configuration.
type Config struct {
	ServerPort  int
	Environment string
	LogLevel    string

	DatabasePath     string
	DBMaxOpenConns   int
	DBMaxIdleConns   int
	DBAcquireTimeout time.Duration
	DBIdleTimeout    time.Duration

	JWTSecret    string
	JWTExpiresIn time.Duration
	BcryptCost   int

	AllowedOrigins      []string
	MaintenanceSchedule string // cron spec, empty disables maintenance
}

// Load loads configuration from environment variables or sets defaults.
// Malformed numeric or duration values are reported rather than silently replaced.
func Load() (*Config, error) {
	port, err := getEnvInt("PORT", 9000)
	if err != nil {
		return nil, err
	}
	maxOpen, err := getEnvInt("DB_MAX_OPEN_CONNS", 5)
	if err != nil {
		return nil, err
	}
	maxIdle, err := getEnvInt("DB_MAX_IDLE_CONNS", 2)
	if err != nil {
		return nil, err
	}
	acquire, err := getEnvDuration("DB_ACQUIRE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	idle, err := getEnvDuration("DB_IDLE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	expiresIn, err := getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cost, err := getEnvInt("BCRYPT_COST", bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:          port,
		Environment:         getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatabasePath:        getEnv("DATABASE_PATH", "./expenses.db"),
		DBMaxOpenConns:      maxOpen,
		DBMaxIdleConns:      maxIdle,
		DBAcquireTimeout:    acquire,
		DBIdleTimeout:       idle,
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTExpiresIn:        expiresIn,
		BcryptCost:          cost,
		AllowedOrigins:      getEnvList("CORS_ALLOWED_ORIGINS", defaultOrigins),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 3 * * *"),
	}, nil
}

// Validate checks the configuration and returns every problem found at once.
func (c *Config) Validate() error {
	var problems []string

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.ServerPort))
	}
	if c.DatabasePath == "" {
		problems = append(problems, "DATABASE_PATH cannot be empty")
	}
	if c.DBMaxOpenConns < 1 {
		problems = append(problems, fmt.Sprintf("invalid DB_MAX_OPEN_CONNS %d: must be at least 1", c.DBMaxOpenConns))
	}
	if c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
		problems = append(problems, fmt.Sprintf("invalid DB_MAX_IDLE_CONNS %d: must be between 0 and DB_MAX_OPEN_CONNS", c.DBMaxIdleConns))
	}
	if c.DBAcquireTimeout <= 0 {
		problems = append(problems, "DB_ACQUIRE_TIMEOUT must be positive")
	}
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.JWTExpiresIn <= 0 {
		problems = append(problems, "JWT_EXPIRES_IN must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		problems = append(problems, fmt.Sprintf("invalid BCRYPT_COST %d: must be between %d and %d", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.MaintenanceSchedule != "" {
		if _, err := cron.ParseStandard(c.MaintenanceSchedule); err != nil {
			problems = append(problems, fmt.Sprintf("invalid MAINTENANCE_SCHEDULE %q: %v", c.MaintenanceSchedule, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
