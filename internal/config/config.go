package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Env      string
	LogLevel string

	// Rental backend
	APIBaseURL        string
	APITimeoutSeconds int
	UserAgent         string

	// Listing defaults
	PageSize int

	// Live refresh feed
	EventsEnabled bool

	// Backend simulator (cmd/dev/simbackend)
	SimPort        string
	SimJWTSecret   string
	SimTokenTTL    time.Duration
	AllowedOrigins []string
}

func Load() *Config {
	// Load .env file in development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:8080"),
		APITimeoutSeconds: parseInt(getEnv("API_TIMEOUT_SECONDS", "10"), 10),
		UserAgent:         getEnv("API_USER_AGENT", "FleetRent/1.0 console"),

		PageSize: parseInt(getEnv("PAGE_SIZE", "20"), 20),

		EventsEnabled: parseBool(getEnv("EVENTS_ENABLED", "true"), true),

		SimPort:        getEnv("SIM_PORT", "8080"),
		SimJWTSecret:   getEnv("SIM_JWT_SECRET", "dev-secret-change-me"),
		SimTokenTTL:    parseDuration(getEnv("SIM_TOKEN_TTL", "12h")),
		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseInt(s string, defaultValue int) int {
	value, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseBool(s string, defaultValue bool) bool {
	value, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 12 * time.Hour
	}
	return d
}

func parseStringSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if start < i {
				result = append(result, s[start:i])
			}
			start = i + 1
		}
	}
	return result
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
