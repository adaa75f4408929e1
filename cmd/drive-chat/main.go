// Command drive-chat is the interactive client: it connects to a
// drive-mcp server, exposes the server's tools to a Gemini model, and
// runs a line-oriented chat loop. An optional first argument overrides
// the server URL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexjbarnes/drive-mcp/internal/agent"
	"github.com/alexjbarnes/drive-mcp/internal/config"
	"github.com/alexjbarnes/drive-mcp/internal/logging"
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

	if err := cfg.ValidateChat(); err != nil {
		return err
	}

	serverURL := cfg.ExternalURL()
	if len(os.Args) > 1 {
		serverURL = os.Args[1]
	}

	logger := logging.NewLogger(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Connecting to Drive MCP server at: %s\n", serverURL)

	client := agent.NewClient(serverURL, cfg.ClientID, logger)
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()

	tools, err := client.ListTools(ctx)
	if err != nil {
		return err
	}

	for _, tool := range tools {
		fmt.Printf("Tool: %s\n", tool.Name)
		fmt.Printf("Description: %s\n", tool.Description)
	}

	authenticated, err := client.AuthStatus(ctx)
	if err != nil {
		return err
	}

	if !authenticated {
		fmt.Println("\nAuthentication needed with Google Drive. Type 'login' to authenticate.")
	}

	fmt.Println("\nExample queries:")
	fmt.Println("- List spreadsheets modified in the last week")

	model, err := agent.NewGemini(ctx, agent.GeminiConfig{
		Project:         cfg.Project,
		Location:        cfg.Location,
		Model:           cfg.DefaultModel,
		Temperature:     cfg.Temperature,
		TopP:            cfg.TopP,
		MaxOutputTokens: cfg.MaxOutputTokens,
	})
	if err != nil {
		return err
	}

	loop := agent.NewLoop(model, client, cfg.MaxToolTurns, logger)

	return agent.NewREPL(client, loop, logger).Run(ctx)
}
