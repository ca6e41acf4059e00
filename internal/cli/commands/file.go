package commands

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"InvKeeper/internal/config"
)

type fileCmd struct{}

func (fileCmd) Name() string        { return "file" }
func (fileCmd) Description() string { return "Download an item attachment by its token" }
func (fileCmd) Usage() string       { return "file <token> <out>" }

func (fileCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}

	tmp := args[1] + ".part"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	hdr, err := c.Download(ctx, "/files/"+url.PathEscape(args[0]), nil, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return sessionExpired(cfg, err)
	}
	if err := os.Rename(tmp, args[1]); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Saved %s (%s)\n", args[1], hdr.Get("Content-Type"))
	return nil
}

func init() { RegisterCmd(fileCmd{}) }
