// Command drive-mcp runs the Google Drive MCP server: the OAuth
// authorization endpoints plus the tool protocol endpoint, all backed
// by an in-memory per-client credential store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/oauth2/google"

	"github.com/alexjbarnes/drive-mcp/internal/auth"
	"github.com/alexjbarnes/drive-mcp/internal/config"
	"github.com/alexjbarnes/drive-mcp/internal/drive"
	"github.com/alexjbarnes/drive-mcp/internal/logging"
	"github.com/alexjbarnes/drive-mcp/internal/mcpserver"
	"github.com/alexjbarnes/drive-mcp/internal/server"
)

const (
	serverName    = "drive-mcp"
	serverVersion = "1.0.0"

	readTimeout     = 10 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.Environment)

	secrets, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("reading credentials file %s: %w", cfg.CredentialsFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(secrets, auth.Scopes...)
	if err != nil {
		return fmt.Errorf("parsing credentials file: %w", err)
	}

	oauthConfig.RedirectURL = cfg.RedirectURL()

	store := auth.NewCredentialStore()
	tracker := auth.NewFlowTracker()

	flow := auth.NewFlow(auth.FlowConfig{
		OAuth:   oauthConfig,
		Store:   store,
		Tracker: tracker,
		Logger:  logger,
	})

	svc := drive.NewService(store, drive.NewClient(nil, ""), logger)

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcpserver.RegisterTools(mcpServer, svc, store, logger)

	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	httpServer := &http.Server{
		Addr: cfg.ListenAddr(),
		Handler: server.NewMux(server.MuxConfig{
			Flow:       flow,
			MCPHandler: mcpHandler,
			Logger:     logger,
		}),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		logger.Info("server listening",
			slog.String("addr", cfg.ListenAddr()),
			slog.String("external_url", cfg.ExternalURL()),
		)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}
