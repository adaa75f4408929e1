package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	apperrors "github.com/alexjbarnes/drive-mcp/internal/errors"
)

// HandleAuthorize returns the /authorize handler. It redirects the
// user's browser to the external authorization endpoint with the flow
// state bound to the client_id query parameter.
func HandleAuthorize(flow *Flow, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		clientID := r.URL.Query().Get("client_id")
		if clientID == "" {
			http.Error(w, "client_id query parameter is required for authorization", http.StatusBadRequest)
			return
		}

		url, err := flow.BeginAuthorization(clientID)
		if err != nil {
			logger.Warn("authorization rejected", slog.String("error", err.Error()))
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}

// HandleCallback returns the /oauth2callback handler. Unknown or
// already-consumed states are a 400; upstream exchange or identity
// failures are a 500 with a descriptive message; success is a 200
// plain-text confirmation naming the authenticated principal.
func HandleCallback(flow *Flow, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		q := r.URL.Query()

		code := q.Get("code")
		state := q.Get("state")

		if code == "" || state == "" {
			http.Error(w, "code and state query parameters are required", http.StatusBadRequest)
			return
		}

		principal, err := flow.CompleteAuthorization(r.Context(), code, state)
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidState) {
				http.Error(w, "Invalid state parameter, please restart authorization", http.StatusBadRequest)
				return
			}

			logger.Error("authorization callback failed", slog.String("error", err.Error()))
			http.Error(w, fmt.Sprintf("Authentication error: %v", err), http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "Authentication successful for user: %s. You can close this window now.", principal)
	}
}
