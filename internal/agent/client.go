// Package agent implements the chat side: an MCP client bound to a
// stable client identity, the translation of tool schemas into model
// function declarations, the multi-turn tool-calling loop, and the
// interactive prompt that drives it.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	clientName    = "drive-chat"
	clientVersion = "1.0.0"

	// authPollInterval is how often WaitForAuth re-checks the
	// authentication status while the user completes the browser flow.
	authPollInterval = 5 * time.Second
)

// headerRoundTripper stamps the client identity header on every
// outgoing protocol request.
type headerRoundTripper struct {
	base     http.RoundTripper
	clientID string
}

func (rt *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("X-Client-ID", rt.clientID)

	return rt.base.RoundTrip(clone)
}

// Client is an MCP client session bound to one client identifier. The
// identifier rides on every call as a header; the server uses it to
// resolve the stored credential.
type Client struct {
	serverURL  string
	clientID   string
	logger     *slog.Logger
	httpClient *http.Client
	session    *mcp.ClientSession
}

// NewClient creates a client for the given server base URL. An empty
// clientID gets a fresh random identity for this process.
func NewClient(serverURL, clientID string, logger *slog.Logger) *Client {
	if clientID == "" {
		clientID = uuid.NewString()
	}

	return &Client{
		serverURL: serverURL,
		clientID:  clientID,
		logger:    logger,
		httpClient: &http.Client{
			Transport: &headerRoundTripper{base: http.DefaultTransport, clientID: clientID},
		},
	}
}

// ClientID returns the identity this client presents to the server.
func (c *Client) ClientID() string {
	return c.clientID
}

// Connect establishes the protocol session.
func (c *Client) Connect(ctx context.Context) error {
	client := mcp.NewClient(&mcp.Implementation{Name: clientName, Version: clientVersion}, nil)

	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint:   c.serverURL + "/mcp",
		HTTPClient: c.httpClient,
	}, nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.serverURL, err)
	}

	c.session = session

	c.logger.Info("connected to server",
		slog.String("server_url", c.serverURL),
		slog.String("client_id", c.clientID),
	)

	return nil
}

// Close tears down the protocol session.
func (c *Client) Close() error {
	if c.session == nil {
		return nil
	}

	return c.session.Close()
}

// ListTools returns the server's tool catalog.
func (c *Client) ListTools(ctx context.Context) ([]*mcp.Tool, error) {
	res, err := c.session.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}

	return res.Tools, nil
}

// CallTool invokes a named tool and returns its textual content. Tool
// results flagged as errors are still returned as text: the server
// reports tool failures in-band and the loop feeds them back to the
// model verbatim.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("calling tool %s: %w", name, err)
	}

	return firstText(res), nil
}

// AuthStatus reports whether the server holds credentials for this
// client identity.
func (c *Client) AuthStatus(ctx context.Context) (bool, error) {
	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "check_authentication_status",
		Arguments: map[string]any{},
	})
	if err != nil {
		return false, fmt.Errorf("checking authentication status: %w", err)
	}

	return firstText(res) == "authenticated", nil
}

// AuthorizeURL returns the browser URL that starts the authorization
// flow for this client identity.
func (c *Client) AuthorizeURL() string {
	return c.serverURL + "/authorize?client_id=" + url.QueryEscape(c.clientID)
}

// WaitForAuth polls the authentication status until the server reports
// credentials for this identity or the context is cancelled.
func (c *Client) WaitForAuth(ctx context.Context) error {
	ticker := time.NewTicker(authPollInterval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ok, err := c.AuthStatus(ctx)
		if err != nil {
			return err
		}

		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func firstText(res *mcp.CallToolResult) string {
	for _, content := range res.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			return tc.Text
		}
	}

	return ""
}
