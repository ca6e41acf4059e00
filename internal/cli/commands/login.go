package commands

import (
	"InvKeeper/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"InvKeeper/internal/cli/api"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store the bearer token" }
func (loginCmd) Usage() string       { return "login <username> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	var resp loginResponse
	_, err := api.NewClient(cfg.ServerURL, "").DoJSON(ctx, http.MethodPost, "/login", nil,
		LoginRequest{Username: args[0], Password: args[1]}, &resp)
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return errors.New("invalid username or password")
	}
	if err != nil {
		return err
	}
	if resp.Token == "" {
		return errors.New("server returned no token")
	}
	if err := tokenStore(cfg).Save(resp.Token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	if resp.ExpiresAt.IsZero() {
		fmt.Fprintln(Out, "Logged in successfully")
	} else {
		fmt.Fprintf(Out, "Logged in successfully, session valid until %s\n", resp.ExpiresAt.Local().Format(time.DateTime))
	}
	return nil
}

func init() { RegisterCmd(loginCmd{}) }
