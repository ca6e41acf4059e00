package service

import (
	"InvKeeper/internal/cache"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const revokedKeyPrefix = "session:revoked:"

// Claims — полезная нагрузка bearer-токена. Subject — имя пользователя, ID (jti) — для отзыва.
type Claims struct {
	jwt.RegisteredClaims
}

// Token — выданный bearer-токен.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// SessionService выдаёт и проверяет bearer-токены (HS256 JWT с обязательным exp).
// Проверка не ходит в БД: подпись + exp + поиск jti в списке отозванных.
type SessionService struct {
	secret  []byte
	ttl     time.Duration
	revoked cache.Store
	now     func() time.Time
}

// NewSessionService создаёт сервис сессий. revoked может быть nil: тогда отзыв не поддерживается.
func NewSessionService(secret string, ttl time.Duration, revoked cache.Store) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{secret: []byte(secret), ttl: ttl, revoked: revoked, now: time.Now}
}

// Issue выдаёт токен для пользователя, уже прошедшего Verify.
func (s *SessionService) Issue(username string) (Token, error) {
	if username == "" {
		return Token{}, ErrActorMissing
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

// Validate проверяет токен и возвращает имя пользователя.
// Ошибки: ErrTokenMissing, ErrTokenExpired, ErrTokenInvalid; прочие: сбой хранилища отзывов.
func (s *SessionService) Validate(ctx context.Context, raw string) (string, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return "", err
	}
	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.Exists(ctx, revokedKeyPrefix+claims.ID)
		if err != nil {
			return "", fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return "", ErrTokenInvalid
		}
	}
	return claims.Subject, nil
}

// Revoke отзывает токен до истечения его собственного срока.
func (s *SessionService) Revoke(ctx context.Context, raw string) error {
	claims, err := s.parse(raw)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil
		}
		return err
	}
	if s.revoked == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Set(ctx, revokedKeyPrefix+claims.ID, claims.Subject, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *SessionService) parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrTokenMissing
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
