package drive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/alexjbarnes/drive-mcp/internal/auth"
	apperrors "github.com/alexjbarnes/drive-mcp/internal/errors"
)

// Service resolves per-client credentials, silently refreshing expired
// access tokens, and runs Drive operations with the result. Concurrent
// refreshes for the same client identifier are collapsed into one token
// endpoint round trip.
type Service struct {
	store      *auth.CredentialStore
	client     *Client
	group      singleflight.Group
	httpClient *http.Client
	logger     *slog.Logger
}

// NewService creates a Drive service over the given store and API
// client.
func NewService(store *auth.CredentialStore, client *Client, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		client:     client,
		httpClient: &http.Client{Timeout: clientTimeout},
		logger:     logger,
	}
}

// SetHTTPClient overrides the client used for token refresh requests.
// Intended for tests that point refreshes at a fake token endpoint.
func (s *Service) SetHTTPClient(hc *http.Client) {
	s.httpClient = hc
}

// ResolveCredential returns a usable credential for the client
// identifier, refreshing it first when the access token is expired. A
// missing record fails with ErrNotAuthenticated without any network
// traffic; a refresh that cannot be performed or is rejected upstream
// fails with ErrRefreshFailed and leaves the stored record untouched.
func (s *Service) ResolveCredential(ctx context.Context, clientID string) (auth.Credential, error) {
	if clientID == "" {
		return auth.Credential{}, apperrors.ErrMissingClientID
	}

	cred, ok := s.store.Get(clientID)
	if !ok {
		return auth.Credential{}, apperrors.ErrNotAuthenticated
	}

	if !cred.Expired() {
		return cred, nil
	}

	if cred.RefreshToken == "" {
		return auth.Credential{}, fmt.Errorf("%w: access token expired and no refresh token stored", apperrors.ErrRefreshFailed)
	}

	v, err, _ := s.group.Do(clientID, func() (any, error) {
		return s.refresh(ctx, clientID)
	})
	if err != nil {
		return auth.Credential{}, err
	}

	return v.(auth.Credential), nil
}

// refresh performs one token endpoint round trip and writes the result
// back to the store. It re-reads the store first: a concurrent caller
// may have refreshed the record while this one waited on the flight.
func (s *Service) refresh(ctx context.Context, clientID string) (auth.Credential, error) {
	cred, ok := s.store.Get(clientID)
	if !ok {
		return auth.Credential{}, apperrors.ErrNotAuthenticated
	}

	if !cred.Expired() {
		return cred, nil
	}

	conf := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: cred.TokenURL},
		Scopes:       cred.Scopes,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	// Force a refresh by presenting the token as already expired.
	tok, err := conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	}).Token()
	if err != nil {
		s.logger.Warn("token refresh failed",
			slog.String("client_id", clientID),
			slog.String("error", err.Error()),
		)

		return auth.Credential{}, fmt.Errorf("%w: %v", apperrors.ErrRefreshFailed, err)
	}

	s.store.UpdateTokens(clientID, tok.AccessToken, tok.RefreshToken, tok.Expiry)

	s.logger.Info("access token refreshed", slog.String("client_id", clientID))

	updated, ok := s.store.Get(clientID)
	if !ok {
		return auth.Credential{}, apperrors.ErrNotAuthenticated
	}

	return updated, nil
}

// SearchFiles resolves the client's credential and runs a Drive search
// with it.
func (s *Service) SearchFiles(ctx context.Context, clientID, query string) ([]File, error) {
	cred, err := s.ResolveCredential(ctx, clientID)
	if err != nil {
		return nil, err
	}

	return s.client.SearchFiles(ctx, cred.AccessToken, query)
}
