package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port     int
	LogLevel string
	APIToken string

	// Mapping table sources, loaded in order; earliest entry per PID wins.
	MappingFile  string
	MappingURL   string
	DatabaseURL  string
	MappingTable string

	// Classifier defaults. SLAMinutes 0 means the policy's own default.
	Policy     string
	SLAMinutes int
	RulesPath  string

	NatsURL   string
	NatsToken string

	SlackBotToken string
	SlackChannel  string
}

func Load() Config {
	return Config{
		Port:          envInt("SENTINEL_PORT", 8760),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		APIToken:      envStr("SENTINEL_API_TOKEN", ""),
		MappingFile:   envStr("MAPPING_FILE", ""),
		MappingURL:    envStr("MAPPING_URL", ""),
		DatabaseURL:   envStr("DATABASE_URL", ""),
		MappingTable:  envStr("MAPPING_TABLE", "product_assignments"),
		Policy:        envStr("SENTINEL_POLICY", "alternating"),
		SLAMinutes:    envInt("SENTINEL_SLA_MINUTES", 0),
		RulesPath:     envStr("SENTINEL_RULES", ""),
		NatsURL:       envStr("NATS_URL", ""),
		NatsToken:     envStr("NATS_TOKEN", ""),
		SlackBotToken: envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:  envStr("SLACK_ALERTS_CHANNEL", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
