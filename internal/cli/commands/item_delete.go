package commands

import (
	"context"
	"fmt"
	"net/http"

	"InvKeeper/internal/config"
)

type itemDeleteCmd struct{}

func (itemDeleteCmd) Name() string { return "delete" }
func (itemDeleteCmd) Description() string {
	return "Удалить запись вместе с вложением"
}
func (itemDeleteCmd) Usage() string { return "delete <id>" }

func (itemDeleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 || !validID(args[0]) {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	if _, err := c.DoJSON(ctx, http.MethodDelete, "/inventory/"+args[0], nil, nil, nil); err != nil {
		return sessionExpired(cfg, err)
	}
	fmt.Fprintf(Out, "Deleted item %s\n", args[0])
	return nil
}

func init() { RegisterCmd(itemDeleteCmd{}) }
