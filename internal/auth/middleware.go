package auth

import (
	"context"
	"log/slog"
	"net/http"
)

// ClientIDHeader carries the caller's opaque client identifier on every
// protocol request. It is the sole key for credential lookup.
const ClientIDHeader = "X-Client-ID"

type contextKey int

const ctxClientID contextKey = iota

// RequestClientID returns the client identifier resolved from the
// transport, or "" when the caller sent none.
func RequestClientID(ctx context.Context) string {
	v, _ := ctx.Value(ctxClientID).(string)
	return v
}

// ClientIDMiddleware resolves the identity header once at the HTTP
// boundary and threads it through the request context. A missing header
// is not a protocol fault: tools answer it with a textual message, so
// the middleware never rejects.
func ClientIDMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := r.Header.Get(ClientIDHeader)

			if clientID == "" {
				logger.Debug("request without client identifier", slog.String("path", r.URL.Path))
			}

			ctx := context.WithValue(r.Context(), ctxClientID, clientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
