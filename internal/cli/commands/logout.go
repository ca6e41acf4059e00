package commands

import (
	"InvKeeper/internal/cli/api"
	"InvKeeper/internal/cli/repo"
	"InvKeeper/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"
)

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Revoke the session and forget the token" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	store := tokenStore(cfg)
	tok, err := store.Load()
	if errors.Is(err, repo.ErrNoToken) {
		fmt.Fprintln(Out, "Not logged in")
		return nil
	}
	if err != nil {
		return err
	}

	_, err = api.NewClient(cfg.ServerURL, tok).DoJSON(ctx, http.MethodPost, "/logout", nil, nil, nil)
	var apiErr *api.Error
	// 401: токен уже недействителен, локально его всё равно удаляем
	if err != nil && !(errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized) {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

func init() { RegisterCmd(logoutCmd{}) }
