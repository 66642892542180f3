package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aman/videotube-backend/internal/domain"
	"github.com/aman/videotube-backend/internal/service"
)

type contextKey string

const userKey contextKey = "user"

// Auth is the gate in front of every protected route. It extracts the
// access token from the accessToken cookie or, failing that, from the
// Authorization header, resolves it to a stored user and attaches the
// sanitized user to the request context.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeUnauthorized(w, "unauthorized request")
				return
			}

			user, err := authService.AuthenticateAccessToken(r.Context(), token)
			if err != nil {
				message := "invalid access token"
				var domainErr *domain.Error
				if errors.As(err, &domainErr) && domainErr.Kind == domain.KindUnauthorized {
					message = domainErr.Message
				}
				writeUnauthorized(w, message)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the authenticated user attached by Auth.
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"statusCode": http.StatusUnauthorized,
		"message":    message,
		"success":    false,
	})
}
