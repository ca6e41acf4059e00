package commands

import (
	"context"
	"fmt"
	"net/http"

	"InvKeeper/internal/config"
)

type itemAddCmd struct{}

func (itemAddCmd) Name() string { return "add" }
func (itemAddCmd) Description() string {
	return "Добавить запись (quantita = carico - scarico)"
}
func (itemAddCmd) Usage() string {
	return "add --codice X [--descrizione X] [--um X] [--locazione X] [--data YYYY-MM-DD] [--carico N] [--scarico N] [--foto file]"
}

func (itemAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	form, err := parseItemForm("add", args)
	if err != nil || len(form.rest) != 0 || form.fields["codice_articolo"] == "" {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	file, done, err := form.openFoto()
	if err != nil {
		return err
	}
	defer done()

	var it Item
	if _, err := c.DoMultipart(ctx, http.MethodPost, "/inventory", form.fields, file, &it); err != nil {
		return sessionExpired(cfg, err)
	}
	fmt.Fprintln(Out, "Created:")
	printItem(it)
	return nil
}

func printItem(it Item) {
	fmt.Fprintf(Out, "  id:        %d\n", it.ID)
	fmt.Fprintf(Out, "  codice:    %s\n", it.CodiceArticolo)
	fmt.Fprintf(Out, "  quantita:  %d %s\n", it.Quantita, it.UnitaMisura)
	if it.Locazione != "" {
		fmt.Fprintf(Out, "  locazione: %s\n", it.Locazione)
	}
	if it.Attachment != nil {
		fmt.Fprintf(Out, "  allegato:  %s (%s)\n", it.Attachment.Token, it.Attachment.Kind)
	}
}

func init() { RegisterCmd(itemAddCmd{}) }
