package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"ledger/internal/log"
)

type contextKey struct{}

// WithUserID stores the authenticated user in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the authenticated user stored by Middleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// Middleware requires "Authorization: Bearer <token>" and puts the user ID in
// the request context. Requests without a valid token get 401.
func Middleware(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(raw) == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			userID, err := tokens.Verify(strings.TrimSpace(raw))
			if err != nil {
				log.FromContext(r.Context()).WithComponent(log.ComponentAuth).
					WarnContext(r.Context(), "Rejected session token", log.FieldError, err.Error())
				unauthorized(w, ErrInvalidToken.Error())
				return
			}

			ctx := WithUserID(r.Context(), userID)
			ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldUserID, userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="ledger"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
