// Package config loads environment-based configuration for the drive-mcp
// server and the drive-chat client. Both binaries share one Config; each
// validates only the fields it needs.
package config

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration.
type Config struct {
	// HTTP binding for the protocol server.
	Host string `env:"HOST" envDefault:"localhost"`
	Port int    `env:"PORT" envDefault:"8081"`

	// ServerURL is the externally reachable base URL of the protocol
	// server. When empty it is derived from Host and Port. The chat
	// client uses it to reach the server; the server uses it to build
	// the OAuth redirect URL, so the two must agree.
	ServerURL string `env:"MCP_SERVER_URL"`

	// Path to the Google OAuth client secrets file (the credentials.json
	// downloaded from the Google Cloud console).
	CredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE" envDefault:"credentials.json"`

	// Environment controls log format.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// Vertex AI settings for the chat client.
	Project  string `env:"PROJECT"`
	Location string `env:"LOCATION"`

	// Model selection and generation parameters.
	DefaultModel    string  `env:"DEFAULT_MODEL" envDefault:"gemini-2.0-flash-001"`
	Temperature     float32 `env:"DEFAULT_TEMPERATURE" envDefault:"0.7"`
	TopP            float32 `env:"DEFAULT_TOP_P" envDefault:"0.95"`
	MaxOutputTokens int32   `env:"DEFAULT_MAX_OUTPUT_TOKENS" envDefault:"1000"`

	// MaxToolTurns caps tool-call round trips per query. 0 means
	// unbounded, which matches the model-decides-when-to-stop behavior;
	// set a positive value to bound worst-case cost.
	MaxToolTurns int `env:"MAX_TOOL_TURNS" envDefault:"0"`

	// ClientID pins the chat client's identifier. When empty a random
	// one is generated per process, which means credentials stored on
	// the server are lost to this client on restart.
	ClientID string `env:"CLIENT_ID"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// ListenAddr returns the host:port pair the server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ExternalURL returns the base URL clients and the OAuth redirect use to
// reach the server.
func (c *Config) ExternalURL() string {
	if c.ServerURL != "" {
		return c.ServerURL
	}

	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// RedirectURL returns the OAuth callback URL registered with the
// authorization server.
func (c *Config) RedirectURL() string {
	return c.ExternalURL() + "/oauth2callback"
}

// ValidateServer checks the fields the protocol server requires.
func (c *Config) ValidateServer() error {
	if c.CredentialsFile == "" {
		return fmt.Errorf("GOOGLE_CREDENTIALS_FILE is required")
	}

	return nil
}

// ValidateChat checks the fields the chat client requires.
func (c *Config) ValidateChat() error {
	if c.Project == "" {
		return fmt.Errorf("PROJECT is required for the chat client")
	}

	if c.Location == "" {
		return fmt.Errorf("LOCATION is required for the chat client")
	}

	if c.DefaultModel == "" {
		return fmt.Errorf("DEFAULT_MODEL must not be empty")
	}

	return nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
