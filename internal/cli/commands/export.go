package commands

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"InvKeeper/internal/config"
)

type exportCmd struct{}

func (exportCmd) Name() string { return "export" }
func (exportCmd) Description() string {
	return "Download the inventory as CSV (\"-\" writes to stdout)"
}
func (exportCmd) Usage() string {
	return "export [--codice X] [--descrizione X] [--locazione X] [file]"
}

func (exportCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	q, rest, err := parseFilters("export", args)
	if err != nil || len(rest) > 1 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	hdr, err := c.Download(ctx, "/inventory/export", q, &buf)
	if err != nil {
		return sessionExpired(cfg, err)
	}

	target := ""
	if len(rest) == 1 {
		target = rest[0]
	}
	if target == "-" {
		_, err := Out.Write(buf.Bytes())
		return err
	}
	if target == "" {
		target = suggestedName(hdr.Get("Content-Disposition"), "inventario_"+time.Now().Format("2006-01-02")+".csv")
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o600); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Saved %s (%d bytes)\n", target, buf.Len())
	return nil
}

// suggestedName берёт имя из Content-Disposition без путей
func suggestedName(disposition, fallback string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return fallback
	}
	name := filepath.Base(params["filename"])
	if name == "." || name == "/" || name == "" {
		return fallback
	}
	return name
}

func init() { RegisterCmd(exportCmd{}) }
