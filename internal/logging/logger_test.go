package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	prod := NewLogger("production")
	require.NotNil(t, prod)
	assert.False(t, prod.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, prod.Enabled(context.Background(), slog.LevelInfo))

	dev := NewLogger("development")
	require.NotNil(t, dev)
	assert.True(t, dev.Enabled(context.Background(), slog.LevelDebug))
}
