// internal/config/config.go
//
// Process configuration read from the environment (and an optional .env
// file in development). Values that fail to parse fall back to defaults.

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const defaultJWTSecret = "dev_secret_change_me"

// Config is everything main needs to wire the server or the terminal client.
type Config struct {
	Port         string
	LogLevel     string
	ClientOrigin string
	Production   bool

	JWTSecret  string
	SessionTTL time.Duration

	WordLength  int
	MaxAttempts int
	TargetWord  string // empty → embedded default
	LayoutFile  string // empty → embedded default

	DiscordClientID     string
	DiscordClientSecret string
	DiscordTokenURL     string
}

// Load reads .env (if present) and then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, reading from environment")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:   os.Getenv("NODE_ENV") == "production",

		JWTSecret:  getEnv("JWT_SECRET", defaultJWTSecret),
		SessionTTL: time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 24)) * time.Hour,

		WordLength:  getEnvAsInt("WORD_LENGTH", 5),
		MaxAttempts: getEnvAsInt("MAX_ATTEMPTS", 6),
		TargetWord:  os.Getenv("TARGET_WORD"),
		LayoutFile:  os.Getenv("LAYOUT_FILE"),

		DiscordClientID:     os.Getenv("DISCORD_CLIENT_ID"),
		DiscordClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		DiscordTokenURL:     getEnv("DISCORD_TOKEN_URL", "https://discord.com/api/oauth2/token"),
	}
	if cfg.Production && cfg.JWTSecret == defaultJWTSecret {
		log.Warn().Msg("JWT_SECRET is unset in production; session tokens use the dev secret")
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring invalid integer")
	}
	return defaultValue
}
