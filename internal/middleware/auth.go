package middleware

import (
	"InvKeeper/internal/service"
	"context"
	"errors"
	"net/http"
	"strings"
)

// Authenticator проверяет bearer-токен и возвращает имя пользователя.
type Authenticator interface {
	Validate(ctx context.Context, raw string) (string, error)
}

type ctxKey int

const (
	usernameKey ctxKey = iota
	tokenKey
	authErrKey
)

// BearerToken извлекает токен из заголовка Authorization: Bearer <token>.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// WithAuth один раз проверяет токен и кладёт личность (или ошибку) в контекст.
// Запрос не блокирует: решение принимает RequireAuth.
func WithAuth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			ctx := r.Context()
			if raw == "" {
				ctx = context.WithValue(ctx, authErrKey, service.ErrTokenMissing)
			} else if username, err := a.Validate(ctx, raw); err != nil {
				ctx = context.WithValue(ctx, authErrKey, err)
			} else {
				ctx = context.WithValue(ctx, usernameKey, username)
				ctx = context.WithValue(ctx, tokenKey, raw)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth отвечает 401, если WithAuth не установил пользователя.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUsernameFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		err, _ := r.Context().Value(authErrKey).(error)
		switch {
		case err == nil, errors.Is(err, service.ErrTokenMissing):
			writeMessage(w, http.StatusUnauthorized, service.ErrTokenMissing.Error())
		case errors.Is(err, service.ErrTokenExpired):
			writeMessage(w, http.StatusUnauthorized, service.ErrTokenExpired.Error())
		case errors.Is(err, service.ErrTokenInvalid):
			writeMessage(w, http.StatusUnauthorized, service.ErrTokenInvalid.Error())
		default:
			if logger != nil {
				logger.Errorw("token validation failed", "error", err)
			}
			writeMessage(w, http.StatusInternalServerError, "internal error")
		}
	})
}

// GetUsernameFromContext возвращает имя аутентифицированного пользователя.
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(usernameKey).(string)
	return u, ok && u != ""
}

// GetTokenFromContext возвращает предъявленный bearer-токен (для logout).
func GetTokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok && t != ""
}
