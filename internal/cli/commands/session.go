package commands

import (
	"InvKeeper/internal/cli/api"
	"InvKeeper/internal/cli/repo"
	fsrepo "InvKeeper/internal/cli/repo/fs"
	"InvKeeper/internal/config"
	"errors"
	"fmt"
)

// ErrNotLoggedIn: на клиенте нет сохранённого токена
var ErrNotLoggedIn = errors.New("not logged in: run `invcli login <username> <password>` first")

// tokenStore — хранилище токена по настройкам клиента
func tokenStore(cfg *config.Config) repo.TokenStore {
	return fsrepo.NewAuthFSStore(cfg.TokenFile)
}

// authedClient возвращает клиент с сохранённым токеном или подсказку выполнить login
func authedClient(cfg *config.Config) (*api.Client, error) {
	tok, err := tokenStore(cfg).Load()
	if errors.Is(err, repo.ErrNoToken) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	return api.NewClient(cfg.ServerURL, tok), nil
}

// sessionExpired: 401 на защищённом запросе: сохранённый токен больше не годится
func sessionExpired(cfg *config.Config, err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status == 401 {
		_ = tokenStore(cfg).Clear()
		return fmt.Errorf("session is no longer valid (%s), log in again", apiErr.Message)
	}
	return err
}
