package middleware

import (
	"context"
	"net/http"
	"strings"

	"hireloop/internal/models"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
	bearerKey       contextKey = "bearer"
)

const SessionCookie = "session"

// SessionStore resolves session tokens to users.
type SessionStore interface {
	GetSessionUser(ctx context.Context, token string) (int64, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Auth attaches the session user to the request context when the session
// cookie or a bearer token resolves to a user who is not banned.
func Auth(store SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			token, bearer := sessionToken(req)
			if token == "" {
				next.ServeHTTP(w, req)
				return
			}

			userID, err := store.GetSessionUser(req.Context(), token)
			if err != nil || userID == 0 {
				next.ServeHTTP(w, req)
				return
			}

			user, err := store.GetUser(req.Context(), userID)
			if err != nil || user.IsBanned {
				next.ServeHTTP(w, req)
				return
			}

			ctx := context.WithValue(req.Context(), userContextKey, user)
			ctx = context.WithValue(ctx, tokenContextKey, token)
			ctx = context.WithValue(ctx, bearerKey, bearer)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func sessionToken(req *http.Request) (token string, bearer bool) {
	if h := req.Header.Get("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t), true
		}
	}
	if cookie, err := req.Cookie(SessionCookie); err == nil {
		return cookie.Value, false
	}
	return "", false
}

func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// IsBearer reports whether the session came from an Authorization header.
func IsBearer(ctx context.Context) bool {
	b, _ := ctx.Value(bearerKey).(bool)
	return b
}

// WithUser is used by tests to fake an authenticated request.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
