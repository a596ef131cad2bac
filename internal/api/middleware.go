package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyPrincipal contextKey = "principal"

// requireAuth is middleware that validates access tokens and attaches the
// requester identity to the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := s.principalFromHeader(r)
		if !ok {
			response.Unauthorized(w, "Invalid or expired token", s.logger)
			return
		}
		if principal == nil {
			response.Unauthorized(w, "Missing authorization header", s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyPrincipal, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalAuth attaches the requester identity when a valid token is
// presented and lets the request through anonymously otherwise. A present
// but invalid token is still rejected rather than silently downgraded.
func (s *Server) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := s.principalFromHeader(r)
		if !ok {
			response.Unauthorized(w, "Invalid or expired token", s.logger)
			return
		}

		if principal != nil {
			ctx := context.WithValue(r.Context(), contextKeyPrincipal, principal)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin ensures the authenticated user is an admin.
// Must be used after requireAuth.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !getPrincipal(r.Context()).IsAdmin() {
			response.Forbidden(w, "Admin access required", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// principalFromHeader parses and verifies the Authorization header.
// Returns (nil, true) when no header is present, (nil, false) when a token
// is present but invalid.
func (s *Server) principalFromHeader(r *http.Request) (*domain.Principal, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, true
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	principal, err := s.authService.VerifyAccessToken(parts[1])
	if err != nil {
		return nil, false
	}
	return principal, true
}

// getPrincipal extracts the requester identity from request context.
// Returns nil for anonymous requests.
func getPrincipal(ctx context.Context) *domain.Principal {
	if principal, ok := ctx.Value(contextKeyPrincipal).(*domain.Principal); ok {
		return principal
	}
	return nil
}
