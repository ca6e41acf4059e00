package service

import (
	"errors"
	"fmt"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidUsername    = errors.New("invalid username: use 3-64 characters among letters, digits, '.', '-' or '_'")
	ErrWeakPassword       = errors.New("password too weak: at least 8 characters with uppercase, lowercase and digits")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrNotFound      = errors.New("not found")
	ErrArticleExists = errors.New("article code already exists")
	ErrTooLarge      = errors.New("attachment too large")
	ErrActorMissing  = errors.New("acting user is required")

	// Ошибки аутентификации: все превращаются в 401.
	ErrTokenMissing = errors.New("missing bearer token")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError — некорректное или отсутствующее поле запроса.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsAuthError сообщает, относится ли ошибка к проверке bearer-токена.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrTokenMissing) || errors.Is(err, ErrTokenInvalid) || errors.Is(err, ErrTokenExpired)
}
