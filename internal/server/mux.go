// Package server assembles the HTTP surface: the OAuth endpoints and
// the MCP protocol handler, with identity resolution applied to every
// request.
package server

import (
	"log/slog"
	"net/http"

	"github.com/alexjbarnes/drive-mcp/internal/auth"
)

// MuxConfig holds the handlers the mux routes to.
type MuxConfig struct {
	Flow       *auth.Flow
	MCPHandler http.Handler
	Logger     *slog.Logger
}

// NewMux builds the server's routing table. The MCP handler sits behind
// the client identity middleware so tool handlers can resolve the
// caller from context; the OAuth endpoints identify callers by query
// parameters instead and skip it.
func NewMux(cfg MuxConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/authorize", auth.HandleAuthorize(cfg.Flow, cfg.Logger))
	mux.HandleFunc("/oauth2callback", auth.HandleCallback(cfg.Flow, cfg.Logger))
	mux.Handle("/mcp", auth.ClientIDMiddleware(cfg.Logger)(cfg.MCPHandler))

	return mux
}
