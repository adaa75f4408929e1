// Package auth implements per-client OAuth credential custody for the
// Drive MCP server: the in-memory credential store, the one-time
// authorization state tracker, and the controller that drives the
// authorization-code flow. All state is in-memory; credentials are
// invalidated on restart.
package auth

import (
	"slices"
	"sync"
	"time"
)

// expiryDelta is the leeway subtracted from a credential's expiry when
// deciding whether it needs a refresh. It matches the delta the oauth2
// package applies internally so both layers agree on what "expired"
// means.
const expiryDelta = 10 * time.Second

// Scopes is the fixed scope set requested during authorization. Drive
// access is metadata-only; the identity scopes let the callback resolve
// the authenticated principal's email.
var Scopes = []string{
	"https://www.googleapis.com/auth/drive.metadata.readonly",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
	"openid",
}

// Credential holds the OAuth token material stored for one client
// identifier. It carries everything a later refresh needs (token
// endpoint, app id and secret) so the resolver never reaches back into
// flow configuration.
type Credential struct {
	AccessToken  string
	RefreshToken string
	TokenURL     string
	ClientID     string // OAuth application client id, not the agent's client identifier
	ClientSecret string
	Scopes       []string
	Expiry       time.Time
}

// Expired reports whether the access token needs a refresh. A zero
// Expiry means the upstream did not communicate one; such tokens are
// treated as non-expiring.
func (c Credential) Expired() bool {
	if c.Expiry.IsZero() {
		return false
	}

	return time.Now().After(c.Expiry.Add(-expiryDelta))
}

// CredentialStore maps client identifiers to credential records. It is
// the single authority over stored token material: the flow controller
// performs the initial write, the resource adapter writes back refreshed
// tokens.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewCredentialStore creates an empty credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		creds: make(map[string]Credential),
	}
}

// Put stores the credential for a client identifier, replacing any
// previous record.
func (s *CredentialStore) Put(clientID string, c Credential) {
	c.Scopes = slices.Clone(c.Scopes)

	s.mu.Lock()
	s.creds[clientID] = c
	s.mu.Unlock()
}

// Get returns a copy of the credential for a client identifier. The
// copy keeps callers from mutating stored state outside UpdateTokens.
func (s *CredentialStore) Get(clientID string) (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.creds[clientID]
	if !ok {
		return Credential{}, false
	}

	c.Scopes = slices.Clone(c.Scopes)

	return c, true
}

// Has reports whether a credential record exists for the client
// identifier. It performs no validity or expiry check; presence alone
// is what the authentication-status tool reports.
func (s *CredentialStore) Has(clientID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.creds[clientID]

	return ok
}

// UpdateTokens writes back the result of a refresh. When the token
// endpoint did not rotate the refresh token (refreshToken is empty),
// the stored one is preserved so the record stays renewable.
func (s *CredentialStore) UpdateTokens(clientID, accessToken, refreshToken string, expiry time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.creds[clientID]
	if !ok {
		return
	}

	c.AccessToken = accessToken
	c.Expiry = expiry

	if refreshToken != "" {
		c.RefreshToken = refreshToken
	}

	s.creds[clientID] = c
}
