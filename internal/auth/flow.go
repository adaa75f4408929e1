package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	apperrors "github.com/alexjbarnes/drive-mcp/internal/errors"
)

const (
	// defaultUserInfoURL is the Google endpoint that resolves the
	// authenticated principal's profile from an access token.
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	// httpClientTimeout bounds the token exchange and identity lookup.
	httpClientTimeout = 30 * time.Second

	// maxIdentityResponseBytes caps userinfo response reads. The payload
	// is a small JSON object.
	maxIdentityResponseBytes = 64 * 1024
)

// Flow drives the three-step authorization-code dance: initiation,
// redirect, and callback verification. On a successful callback it is
// the sole writer of new records into the credential store.
type Flow struct {
	oauth       *oauth2.Config
	store       *CredentialStore
	tracker     *FlowTracker
	userInfoURL string
	httpClient  *http.Client
	logger      *slog.Logger
}

// FlowConfig holds dependencies for building a Flow.
type FlowConfig struct {
	OAuth   *oauth2.Config
	Store   *CredentialStore
	Tracker *FlowTracker
	Logger  *slog.Logger

	// UserInfoURL overrides the identity endpoint. Empty means the
	// Google userinfo endpoint.
	UserInfoURL string

	// HTTPClient overrides the client used for the token exchange and
	// identity lookup. Nil means a default client with a 30s timeout.
	HTTPClient *http.Client
}

// NewFlow creates an authorization flow controller.
func NewFlow(cfg FlowConfig) *Flow {
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultUserInfoURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpClientTimeout}
	}

	return &Flow{
		oauth:       cfg.OAuth,
		store:       cfg.Store,
		tracker:     cfg.Tracker,
		userInfoURL: userInfoURL,
		httpClient:  httpClient,
		logger:      cfg.Logger,
	}
}

// BeginAuthorization mints a flow state for the client identifier and
// returns the authorization URL the user must visit. Offline access and
// a forced consent prompt ensure a refresh token is issued even when the
// user granted access before.
func (f *Flow) BeginAuthorization(clientID string) (string, error) {
	if clientID == "" {
		return "", fmt.Errorf("%w: client_id must not be empty", apperrors.ErrInvalidRequest)
	}

	state := f.tracker.Begin(clientID)

	f.logger.Info("authorization started",
		slog.String("client_id", clientID),
		slog.String("state", state),
	)

	url := f.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)

	return url, nil
}

// CompleteAuthorization handles the provider callback: it consumes the
// flow state, exchanges the authorization code for tokens, resolves the
// principal's identity, and stores the credential under the client
// identifier recovered from the state. It returns the principal
// identifier for user-facing confirmation.
func (f *Flow) CompleteAuthorization(ctx context.Context, code, state string) (string, error) {
	clientID, ok := f.tracker.Consume(state)
	if !ok {
		f.logger.Warn("callback with unknown or consumed state", slog.String("state", state))
		return "", apperrors.ErrInvalidState
	}

	// Route the exchange through our HTTP client so tests can point the
	// flow at a fake token endpoint.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)

	token, err := f.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: exchanging authorization code: %v", apperrors.ErrUpstreamAuth, err)
	}

	principal, err := f.fetchPrincipal(ctx, token.AccessToken)
	if err != nil {
		return "", err
	}

	f.store.Put(clientID, Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenURL:     f.oauth.Endpoint.TokenURL,
		ClientID:     f.oauth.ClientID,
		ClientSecret: f.oauth.ClientSecret,
		Scopes:       f.oauth.Scopes,
		Expiry:       token.Expiry,
	})

	f.logger.Info("credentials stored",
		slog.String("client_id", clientID),
		slog.String("principal", principal),
		slog.Bool("has_refresh_token", token.RefreshToken != ""),
	)

	return principal, nil
}

// fetchPrincipal queries the identity endpoint for the authenticated
// user's stable identifier (email).
func (f *Flow) fetchPrincipal(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.userInfoURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating identity request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: querying identity endpoint: %v", apperrors.ErrUpstreamAuth, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIdentityResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading identity response: %v", apperrors.ErrUpstreamAuth, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: identity endpoint returned status %d", apperrors.ErrUpstreamAuth, resp.StatusCode)
	}

	email := gjson.GetBytes(body, "email").Str
	if email == "" {
		return "", apperrors.ErrMissingIdentity
	}

	return email, nil
}
