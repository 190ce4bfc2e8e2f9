// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultTeams is the Israeli district team list used when SCOUT_TEAMS is unset.
var DefaultTeams = []string{
	"1574", "1576", "1577", "1657", "1690", "1937", "1942", "1943", "1954",
	"2096", "2212", "2230", "2231", "2630", "2679", "3065", "3075", "3083",
	"3211", "3316", "3339", "3388", "3835", "4319", "4320", "4338", "4416",
	"4586", "4590", "4661", "4744", "5135", "5291", "5554", "5614", "5635",
	"5654", "5715", "5928", "5951", "5987", "5990", "6104", "6168", "6230",
	"6738", "6740", "6741", "7039", "7067", "7112", "7177", "7845", "8175", "8223",
}

type Config struct {
	// Storage
	DBPath string

	// Known team universe, in display order
	Teams []string

	// External ratings
	EPAYear         int
	StatboticsURL   string
	RedisURL        string
	RatingsCacheTTL time.Duration

	// Language model write-ups
	AnthropicAPIKey string
	AnalyzeModel    string

	// HTTP server
	Addr           string
	AllowedOrigins []string

	// Logging
	LogLevel string
	Env      string
}

// Load reads a .env file from the working directory if present, then
// builds the configuration from environment variables.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() *Config {
	cfg := &Config{
		DBPath: getEnv("SCOUT_DB", defaultDBPath()),

		EPAYear:         getEnvInt("SCOUT_EPA_YEAR", 2025),
		StatboticsURL:   getEnv("STATBOTICS_URL", "https://api.statbotics.io/v3"),
		RedisURL:        getEnv("REDIS_URL", ""),
		RatingsCacheTTL: getEnvDuration("RATINGS_CACHE_TTL", 6*time.Hour),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnalyzeModel:    getEnv("ANALYZE_MODEL", ""),

		Addr: getEnv("SCOUT_ADDR", ":8080"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		Env:      getEnv("ENV", "development"),
	}

	cfg.Teams = ParseTeams(os.Getenv("SCOUT_TEAMS"))
	if len(cfg.Teams) == 0 {
		cfg.Teams = append([]string(nil), DefaultTeams...)
	}

	cfg.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"))
	return cfg
}

// ParseTeams splits a comma-separated team list, dropping blanks and
// repeated entries while keeping first-seen order.
func ParseTeams(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range splitList(s) {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".reefscout", "scouting.db")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
