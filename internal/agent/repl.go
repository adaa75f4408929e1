package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

// REPL is the interactive prompt that drives the tool-calling loop.
// Free text becomes a model query; the reserved commands help, quit,
// exit, login, and tools are handled locally.
type REPL struct {
	client *Client
	loop   *Loop
	logger *slog.Logger
}

// NewREPL creates the interactive prompt.
func NewREPL(client *Client, loop *Loop, logger *slog.Logger) *REPL {
	return &REPL{
		client: client,
		loop:   loop,
		logger: logger,
	}
}

// Run reads queries until quit, exit, EOF, or context cancellation.
// Query and tool errors are printed and the prompt continues; only
// readline failures end the loop with an error.
func (r *REPL) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "Query: ",
		HistoryFile:     filepath.Join(os.TempDir(), ".drive-chat-history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("initializing prompt: %w", err)
	}
	defer rl.Close()

	fmt.Println("\nDrive MCP Client Started!")
	fmt.Println("Type your queries or 'help' to know available commands.")
	fmt.Printf("Using client ID: %s\n", r.client.ClientID())

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}

		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		query := strings.TrimSpace(line)
		if query == "" {
			continue
		}

		switch strings.ToLower(query) {
		case "help":
			fmt.Println("Available commands:")
			fmt.Println("quit or exit: Exit the chat")
			fmt.Println("login: Authenticate with the MCP server")
			fmt.Println("tools: List available tools")
		case "quit", "exit":
			return nil
		case "login":
			if err := r.login(ctx); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		case "tools":
			if err := r.printTools(ctx); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		default:
			if err := r.runQuery(ctx, query); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		}
	}
}

// login checks the server-side authentication status and, when needed,
// walks the user through the browser flow, blocking until the server
// confirms stored credentials.
func (r *REPL) login(ctx context.Context) error {
	ok, err := r.client.AuthStatus(ctx)
	if err != nil {
		return err
	}

	if ok {
		fmt.Println("Already authenticated with Google Drive.")
		return nil
	}

	fmt.Println("Authentication needed with Google Drive.")
	fmt.Println("Please complete the Google authentication process.")
	fmt.Printf("Open the following URL in your browser to authenticate: %s\n", r.client.AuthorizeURL())

	if err := r.client.WaitForAuth(ctx); err != nil {
		return err
	}

	fmt.Println("Authentication successful!")

	return nil
}

func (r *REPL) printTools(ctx context.Context) error {
	tools, err := r.client.ListTools(ctx)
	if err != nil {
		return err
	}

	for _, tool := range tools {
		fmt.Printf("Tool: %s\n", tool.Name)
		fmt.Printf("Description: %s\n", tool.Description)
	}

	return nil
}

// runQuery fetches the current tool catalog, runs the tool loop for the
// query, and prints the final answer.
func (r *REPL) runQuery(ctx context.Context, query string) error {
	tools, err := r.client.ListTools(ctx)
	if err != nil {
		return err
	}

	answer, err := r.loop.Run(ctx, query, FunctionDeclarations(tools))
	if err != nil {
		return err
	}

	fmt.Println(answer)

	return nil
}
