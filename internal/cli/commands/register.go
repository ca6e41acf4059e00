package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"InvKeeper/internal/cli/api"
	"InvKeeper/internal/config"
)

type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Register регистрирует пользователя на сервере
func Register(ctx context.Context, baseURL, username, password string) error {
	req := RegisterRequest{Username: username, Password: password, ConfirmPassword: password}
	_, err := api.NewClient(baseURL, "").DoJSON(ctx, http.MethodPost, "/register", nil, req, nil)
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		return errors.New("username already in use")
	}
	return err
}

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create an account (then run login)" }
func (registerCmd) Usage() string       { return "register <username> <password>" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	if err := Register(ctx, cfg.ServerURL, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Registered successfully")
	return nil
}

func init() { RegisterCmd(registerCmd{}) }
