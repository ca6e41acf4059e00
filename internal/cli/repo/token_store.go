package repo

import "errors"

// ErrNoToken — пользователь ещё не входил или вышел.
var ErrNoToken = errors.New("not logged in")

// TokenStore описывает абстракцию хранилища bearer-токена на клиенте.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	Clear() error
}
