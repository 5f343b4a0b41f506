package config

// Config holds all configuration for the application.
type Config struct {
	DBName   string
	Port     string
	Slack    SlackConfig
	TenantID string
	Turso    TursoConfig
	Events   EventsConfig
	Inngest  InngestConfig
	// ProjectID is the GCP project for Pub/Sub.
	ProjectID  string
	Tournament TournamentConfig
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

// DryRun is true when there is no token to post with.
func (s SlackConfig) DryRun() bool {
	return s.Token == ""
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type InngestConfig struct {
	AppID      string
	SigningKey string
	EventKey   string
	Dev        bool
}

// EventsBackend selects how tournament events reach their listeners.
type EventsBackend string

const (
	EventsBackendLocal   EventsBackend = "local"
	EventsBackendPubSub  EventsBackend = "pubsub"
	EventsBackendInngest EventsBackend = "inngest"
)

type EventsConfig struct {
	Backend EventsBackend
}

type TournamentConfig struct {
	BestOf int
}
