package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"tunemart/core/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// corsMiddleware allows the marketplace frontend to call the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate checks the Bearer token and stores its claims in the
// request context.
func (h *APIHandler) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSON(w, http.StatusUnauthorized, "Authorization header is required", nil)
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeJSON(w, http.StatusUnauthorized, "Invalid authorization header format", nil)
			return
		}

		claims, err := h.tokens.Parse(parts[1])
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, "Invalid token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// requireRole restricts a handler to callers holding the given role.
func (h *APIHandler) requireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return h.authenticate(func(w http.ResponseWriter, r *http.Request) {
		claims, err := claimsFromContext(r.Context())
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		if claims.Role != role {
			writeJSON(w, http.StatusForbidden, fmt.Sprintf("This operation requires the %s role", role), nil)
			return
		}
		next(w, r)
	})
}

// claimsFromContext extracts the authenticated claims from the request context.
func claimsFromContext(ctx context.Context) (*auth.Claims, error) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	if !ok {
		return nil, fmt.Errorf("claims not found in context")
	}
	return claims, nil
}
