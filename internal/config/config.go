// Package config provides configuration types and loading for foundrgate.
package config

import "time"

// Config is the root configuration struct.
// Top-level groups: Gateway, Processor, Ledger, Slack, Events, Audit.
type Config struct {
	Gateway   GatewayConfig   `json:"gateway"`
	Processor ProcessorConfig `json:"processor"`
	Ledger    LedgerConfig    `json:"ledger"`
	Slack     SlackConfig     `json:"slack"`
	Events    EventsConfig    `json:"events"`
	Audit     AuditConfig     `json:"audit"`
	LogLevel  string          `json:"logLevel" envconfig:"LOG_LEVEL"`
}

// ---------------------------------------------------------------------------
// Gateway – HTTP server networking and inbound authentication
// ---------------------------------------------------------------------------

// GatewayConfig contains gateway server settings.
type GatewayConfig struct {
	Host             string `json:"host" envconfig:"HOST"`
	Port             int    `json:"port" envconfig:"PORT"`
	PublicKey        string `json:"publicKey" envconfig:"PUBLIC_KEY"`
	SharedSecret     string `json:"sharedSecret" envconfig:"SHARED_SECRET"`
	DashboardBaseURL string `json:"dashboardBaseUrl" envconfig:"DASHBOARD_BASE_URL"`
}

// ---------------------------------------------------------------------------
// Processor – downstream command processing API
// ---------------------------------------------------------------------------

// ProcessorConfig configures the downstream processor client.
type ProcessorConfig struct {
	BaseURL string        `json:"baseUrl" envconfig:"BASE_URL"`
	Timeout time.Duration `json:"timeout" envconfig:"TIMEOUT"`
}

// ---------------------------------------------------------------------------
// Ledger – remote identity/history store
// ---------------------------------------------------------------------------

// LedgerConfig configures the ledger RPC client. Target identifies the
// backing store instance and is always injected here, never compiled in.
type LedgerConfig struct {
	URL     string        `json:"url" envconfig:"URL"`
	Target  string        `json:"target" envconfig:"TARGET"`
	Timeout time.Duration `json:"timeout" envconfig:"TIMEOUT"`
}

// ---------------------------------------------------------------------------
// Slack – reply delivery for the service API surface
// ---------------------------------------------------------------------------

// SlackConfig configures the Slack reply sink.
type SlackConfig struct {
	Enabled        bool   `json:"enabled" envconfig:"ENABLED"`
	BotToken       string `json:"botToken" envconfig:"BOT_TOKEN"`
	APIBase        string `json:"apiBase" envconfig:"API_BASE"`
	DefaultChannel string `json:"defaultChannel" envconfig:"DEFAULT_CHANNEL"`
}

// ---------------------------------------------------------------------------
// Events – dispatch event stream
// ---------------------------------------------------------------------------

// EventsConfig configures the Kafka dispatch-event publisher.
type EventsConfig struct {
	Enabled bool   `json:"enabled" envconfig:"ENABLED"`
	Brokers string `json:"brokers" envconfig:"BROKERS"`
	Topic   string `json:"topic" envconfig:"TOPIC"`
}

// ---------------------------------------------------------------------------
// Audit – local invocation log
// ---------------------------------------------------------------------------

// AuditConfig configures the SQLite invocation audit store.
type AuditConfig struct {
	Path string `json:"path" envconfig:"PATH"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Host: "127.0.0.1", // Secure default
			Port: 13000,
		},
		Processor: ProcessorConfig{
			BaseURL: "http://127.0.0.1:5005",
			Timeout: 30 * time.Second,
		},
		Ledger: LedgerConfig{
			URL:     "http://127.0.0.1:4943",
			Timeout: 30 * time.Second,
		},
		Slack: SlackConfig{
			APIBase: "https://slack.com/api",
		},
		Events: EventsConfig{
			Topic: "foundrgate.dispatch",
		},
		Audit: AuditConfig{
			Path: "~/.foundrgate/audit.db",
		},
		LogLevel: "info",
	}
}
