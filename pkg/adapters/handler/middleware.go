package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/wadjakorntonsri/gift-bundle/pkg/auth"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
	"github.com/wadjakorntonsri/gift-bundle/pkg/logging"
	"github.com/wadjakorntonsri/gift-bundle/pkg/ports"
)

const authCookieName = "auth_token"

type contextKey struct{}

var userContextKey = contextKey{}

type Middleware struct {
	tokens *auth.TokenManager
	users  ports.UserService
	logger logging.Logger
}

func NewMiddleware(tokens *auth.TokenManager, users ports.UserService, logger logging.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// AuthMiddleware verifies the JWT from the Authorization header or the auth cookie
// and loads the user it names.
func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			if cookie, err := r.Cookie(authCookieName); err == nil {
				tokenString = cookie.Value
			}
		}
		if tokenString == "" {
			writeError(w, m.logger, r, domain.ErrInvalidJwt)
			return
		}

		userID, err := m.tokens.Parse(tokenString)
		if err != nil {
			writeError(w, m.logger, r, err)
			return
		}

		user, err := m.users.Authenticate(r.Context(), userID)
		if err != nil {
			// A token for an account that is gone is as good as no token.
			if errors.Is(err, domain.ErrUserNotFound) {
				err = domain.ErrInvalidJwt
			}
			writeError(w, m.logger, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the principal set by AuthMiddleware.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// Recoverer turns a panic into a 500 response instead of a dropped connection.
func (m *Middleware) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				m.logger.Error("panic serving request", nil, map[string]interface{}{
					"path":  r.URL.Path,
					"panic": rec,
				})
				writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL_ERROR", Error: "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
