// Package mcpserver registers the Drive tools on an MCP server. Tool
// handlers resolve the caller's identity from the transport context and
// report every failure as textual content rather than a protocol fault,
// so the model always receives something it can reason about.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/alexjbarnes/drive-mcp/internal/auth"
	"github.com/alexjbarnes/drive-mcp/internal/drive"
	apperrors "github.com/alexjbarnes/drive-mcp/internal/errors"
)

// SearchInput is the argument schema for the file search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"search query in Google Drive API query syntax, e.g. \"name contains 'report'\" or \"mimeType='application/pdf'\" or \"modifiedTime > '2025-01-01'\""`
}

// StatusInput is the (empty) argument schema for the authentication
// status tool.
type StatusInput struct{}

// RegisterTools adds the Drive tools to the server.
func RegisterTools(server *mcp.Server, svc *drive.Service, store *auth.CredentialStore, logger *slog.Logger) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "search_drive_files",
		Description: "Search for files in Google Drive using a query string that follows " +
			"the Google Drive API query syntax. Examples: find all PDF files with " +
			"\"mimeType='application/pdf'\"; search for documents with 'report' in the name " +
			"with \"name contains 'report'\"; find files modified after a date with " +
			"\"modifiedTime > '2025-01-01'\".",
	}, searchHandler(svc, logger))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_authentication_status",
		Description: "Check if the user is authenticated with Google Drive based on the X-Client-ID header.",
	}, statusHandler(store, logger))
}

func searchHandler(svc *drive.Service, logger *slog.Logger) mcp.ToolHandlerFor[SearchInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, any, error) {
		clientID := auth.RequestClientID(ctx)
		if clientID == "" {
			return textResult("No client_id provided for authentication."), nil, nil
		}

		logger.Info("searching drive files",
			slog.String("client_id", clientID),
			slog.String("query", input.Query),
		)

		files, err := svc.SearchFiles(ctx, clientID, input.Query)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotAuthenticated) {
				return textResult(fmt.Sprintf("Error searching files: no credentials found for client_id: %s", clientID)), nil, nil
			}

			return textResult(fmt.Sprintf("Error searching files: %v", err)), nil, nil
		}

		if len(files) == 0 {
			return textResult("No files found matching your query."), nil, nil
		}

		return textResult(formatFileList(files)), nil, nil
	}
}

func statusHandler(store *auth.CredentialStore, logger *slog.Logger) mcp.ToolHandlerFor[StatusInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, any, error) {
		clientID := auth.RequestClientID(ctx)
		if clientID == "" {
			return textResult("No X-Client-ID header provided for authentication check."), nil, nil
		}

		logger.Debug("checking authentication status", slog.String("client_id", clientID))

		// Presence of a record is the whole check; expiry is the search
		// path's problem.
		if store.Has(clientID) {
			return textResult("authenticated"), nil, nil
		}

		return textResult("not authenticated"), nil, nil
	}
}

func formatFileList(files []drive.File) string {
	lines := []string{"Files found:"}

	for _, f := range files {
		line := fmt.Sprintf("- %s (%s)", f.Name, f.MimeType)
		if f.WebViewLink != "" {
			line += fmt.Sprintf("\n  Link: %s", f.WebViewLink)
		}

		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
