package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/printshop/internal/auth"
)

type contextKey string

// UserContextKey is where validated claims live in the request context
const UserContextKey contextKey = "user"

// Middleware is the standard wrapping shape used by the router
type Middleware func(http.Handler) http.Handler

// ExtractToken pulls the JWT from the access_token cookie (browser) or
// the Authorization header (API clients). Cookie wins when both are set.
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// AuthMiddleware rejects requests without a valid access token
func AuthMiddleware(jwtService *auth.JWTService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				respondError(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				respondError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, withClaims(r, claims))
		})
	}
}

// OptionalAuthMiddleware attaches claims when a valid token is present
// but lets anonymous requests through
func OptionalAuthMiddleware(jwtService *auth.JWTService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := ExtractToken(r); token != "" {
				if claims, err := jwtService.ValidateAccessToken(token); err == nil {
					r = withClaims(r, claims)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole allows the request through only when the authenticated
// user holds one of the given roles. Must run after AuthMiddleware.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserFromContext(r.Context())
			if !ok {
				respondError(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			respondError(w, "forbidden", http.StatusForbidden)
		})
	}
}

func withClaims(r *http.Request, claims *auth.Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
}

// GetUserFromContext retrieves user claims from the request context
func GetUserFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*auth.Claims)
	return claims, ok
}

// GetUserID returns the authenticated user ID, or "" when anonymous
func GetUserID(ctx context.Context) string {
	if claims, ok := GetUserFromContext(ctx); ok {
		return claims.UserID
	}
	return ""
}

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
