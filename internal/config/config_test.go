package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "credentials.json", cfg.CredentialsFile)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "gemini-2.0-flash-001", cfg.DefaultModel)
	assert.InDelta(t, 0.7, cfg.Temperature, 0.001)
	assert.InDelta(t, 0.95, cfg.TopP, 0.001)
	assert.Equal(t, int32(1000), cfg.MaxOutputTokens)
	assert.Equal(t, 0, cfg.MaxToolTurns)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "9000")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("MAX_TOOL_TURNS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr())
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5, cfg.MaxToolTurns)
}

func TestExternalURL(t *testing.T) {
	cfg := &Config{Host: "localhost", Port: 8081}
	assert.Equal(t, "http://localhost:8081", cfg.ExternalURL())
	assert.Equal(t, "http://localhost:8081/oauth2callback", cfg.RedirectURL())

	cfg.ServerURL = "https://drive-mcp.example.com"
	assert.Equal(t, "https://drive-mcp.example.com", cfg.ExternalURL())
	assert.Equal(t, "https://drive-mcp.example.com/oauth2callback", cfg.RedirectURL())
}

func TestValidateServer(t *testing.T) {
	cfg := &Config{CredentialsFile: "credentials.json"}
	assert.NoError(t, cfg.ValidateServer())

	cfg.CredentialsFile = ""
	assert.Error(t, cfg.ValidateServer())
}

func TestValidateChat(t *testing.T) {
	cfg := &Config{Project: "my-project", Location: "us-central1", DefaultModel: "gemini-2.0-flash-001"}
	assert.NoError(t, cfg.ValidateChat())

	assert.Error(t, (&Config{Location: "us-central1", DefaultModel: "m"}).ValidateChat())
	assert.Error(t, (&Config{Project: "p", DefaultModel: "m"}).ValidateChat())
	assert.Error(t, (&Config{Project: "p", Location: "l"}).ValidateChat())
}
