package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const defaultBestOf = 3

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
	cfg, err := load(os.LookupEnv)
	if err != nil {
		log.Fatalf("Error: %s", err)
	}
	return cfg
}

func load(lookup func(string) (string, bool)) (Config, error) {
	var missing []string
	// A helper function to get a required env var.
	getEnv := func(key string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		missing = append(missing, key)
		return ""
	}
	getEnvDefault := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}

	cfg := Config{
		DBName: getEnv("DB_NAME"),
		Port:   getEnv("PORT"),
		Slack: SlackConfig{
			Token:     getEnvDefault("SLACK_BOT_TOKEN", ""),
			ChannelID: getEnvDefault("SLACK_CHANNEL_ID", ""),
		},
		TenantID: getEnvDefault("PLAYTOMIC_TENANT_ID", ""),
		Turso: TursoConfig{
			PrimaryURL: getEnvDefault("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvDefault("TURSO_AUTH_TOKEN", ""),
		},
		Events: EventsConfig{
			Backend: EventsBackend(getEnvDefault("EVENTS_BACKEND", string(EventsBackendLocal))),
		},
		ProjectID: getEnvDefault("GCP_PROJECT", ""),
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %v", missing)
	}

	switch cfg.Events.Backend {
	case EventsBackendLocal:
	case EventsBackendPubSub:
		cfg.ProjectID = getEnv("GCP_PROJECT")
	case EventsBackendInngest:
		dev, err := strconv.ParseBool(getEnvDefault("INNGEST_DEV", "false"))
		if err != nil {
			return Config{}, fmt.Errorf("invalid INNGEST_DEV: %w", err)
		}
		cfg.Inngest = InngestConfig{
			AppID:      getEnvDefault("INNGEST_APP_ID", "ladder"),
			SigningKey: getEnvDefault("INNGEST_SIGNING_KEY", ""),
			EventKey:   getEnvDefault("INNGEST_EVENT_KEY", ""),
			Dev:        dev,
		}
	default:
		return Config{}, fmt.Errorf("unknown EVENTS_BACKEND %q", cfg.Events.Backend)
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %v", missing)
	}

	bestOf, err := strconv.Atoi(getEnvDefault("TOURNAMENT_BEST_OF", strconv.Itoa(defaultBestOf)))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TOURNAMENT_BEST_OF: %w", err)
	}
	if bestOf < 1 || bestOf%2 == 0 {
		return Config{}, fmt.Errorf("TOURNAMENT_BEST_OF must be a positive odd number, got %d", bestOf)
	}
	cfg.Tournament.BestOf = bestOf
	return cfg, nil
}
