// Package config provides configuration management for the bot.
// It loads environment variables (and an optional .env file) once and
// makes them available throughout the application.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingToken is returned by Load when DISCORD_TOKEN is not set
var ErrMissingToken = errors.New("DISCORD_TOKEN is not set")

// Mute modes
const (
	MuteModeTimeout = "timeout"
	MuteModeRole    = "role"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken   string
	DevGuildID string
	Prefix     string

	// Storage
	DatabaseURL string
	SQLitePath  string
	MongoDBName string
	RedisURL    string

	// Leveling
	XPPerMessage int64
	XPCooldown   time.Duration

	// Moderation
	SpamThreshold int
	MuteMode      string

	// MQTT
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string

	// Web Server
	Port string

	// Environment
	Environment string
	Debug       bool

	// Webhooks
	ErrorWebhook string
	LogsWebhook  string
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

var (
	cfg     *Config
	cfgErr  error
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgErr = nil
	cfgOnce = sync.Once{}
}

func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	cfg = &Config{
		BotToken:   getEnv("DISCORD_TOKEN", ""),
		DevGuildID: getEnv("DEV_GUILD_ID", ""),
		Prefix:     getEnv("PREFIX", "."),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "levels.db"),
		MongoDBName: getEnv("MONGO_DB", "ArcaneBot"),
		RedisURL:    getEnv("REDIS_URL", ""),

		XPPerMessage: getEnvInt("XP_PER_MESSAGE", 10),
		XPCooldown:   getEnvDuration("XP_COOLDOWN", 60*time.Second),

		SpamThreshold: int(getEnvInt("SPAM_THRESHOLD", 5)),
		MuteMode:      strings.ToLower(getEnv("MUTE_MODE", MuteModeTimeout)),

		MQTTHost:     getEnv("MQTT_HOST", ""),
		MQTTPort:     getEnv("MQTT_PORT", "1883"),
		MQTTUser:     getEnv("MQTT_USER", ""),
		MQTTPassword: getEnv("MQTT_PASSWORD", ""),

		Port: getEnv("PORT", "3000"),

		Environment: getEnv("ENVIRONMENT", "dev"),
		Debug:       getEnv("DEBUG", "") == "true",

		ErrorWebhook: getEnv("ERROR_WEBHOOK", ""),
		LogsWebhook:  getEnv("LOGS_WEBHOOK", ""),
	}

	if cfg.MuteMode != MuteModeRole {
		cfg.MuteMode = MuteModeTimeout
	}
	if cfg.SpamThreshold < 2 {
		cfg.SpamThreshold = 5
	}
	if cfg.XPPerMessage <= 0 {
		cfg.XPPerMessage = 10
	}

	if cfg.BotToken == "" {
		cfgErr = ErrMissingToken
	}
}

// Load initializes the configuration from environment variables.
// The returned Config is usable even when err is ErrMissingToken so
// tooling that never connects to the gateway can still read it.
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, cfgErr
}

// Get returns the current configuration
func Get() *Config {
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}
