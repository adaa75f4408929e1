// Package drive provides the Google Drive REST adapter and the
// credential-resolving service that tool handlers call. The client
// speaks the Drive v3 files API directly over HTTP; the service layers
// per-client credential resolution and silent refresh on top.
package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultBaseURL = "https://www.googleapis.com/drive/v3"

	// searchPageSize bounds a single search to one page of results.
	searchPageSize = 10

	// searchFields trims the response to the fields the tool renders.
	searchFields = "files(id,name,mimeType,webViewLink)"

	clientTimeout = 30 * time.Second

	// maxResponseBytes caps Drive response reads.
	maxResponseBytes = 1 << 20
)

// File is one Drive file from a search result.
type File struct {
	ID          string
	Name        string
	MimeType    string
	WebViewLink string
}

// Client issues authenticated requests against the Drive v3 API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Drive API client. A nil httpClient gets a default
// with a 30s timeout; an empty baseURL means the Google endpoint.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: clientTimeout}
	}

	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// SearchFiles runs a Drive files.list query with the given access token
// and returns up to one page of matching files.
func (c *Client) SearchFiles(ctx context.Context, accessToken, query string) ([]File, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(searchPageSize))
	params.Set("fields", searchFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying drive: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading drive response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "error.message").Str
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}

		return nil, fmt.Errorf("drive returned status %d: %s", resp.StatusCode, msg)
	}

	var files []File

	for _, f := range gjson.GetBytes(body, "files").Array() {
		files = append(files, File{
			ID:          f.Get("id").Str,
			Name:        f.Get("name").Str,
			MimeType:    f.Get("mimeType").Str,
			WebViewLink: f.Get("webViewLink").Str,
		})
	}

	return files, nil
}
