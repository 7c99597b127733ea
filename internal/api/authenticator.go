package api

import (
	"context"
	"net/http"
	"strings"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticator resolves the bearer token of a request into its user.
type Authenticator struct {
	identity domain.IdentityService
	logger   logger.Logger
}

func NewAuthenticator(identity domain.IdentityService, logger logger.Logger) *Authenticator {
	return &Authenticator{
		identity: identity,
		logger:   logger,
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// Require rejects requests without a valid session.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.identity.ResolveIdentity(r.Context(), bearerToken(r))
		if err != nil {
			writeError(w, r, a.logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	})
}

// RequireRole is Require plus a role check.
func (a *Authenticator) RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := a.identity.RequireRole(currentUser(r), roles...); err != nil {
				writeError(w, r, a.logger, err)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// currentUser returns the user stored by Require, or nil.
func currentUser(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userContextKey).(*domain.User)
	return user
}
