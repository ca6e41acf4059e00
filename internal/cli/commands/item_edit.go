package commands

import (
	"context"
	"fmt"
	"net/http"

	"InvKeeper/internal/config"
)

type itemEditCmd struct{}

func (itemEditCmd) Name() string { return "edit" }
func (itemEditCmd) Description() string {
	return "Изменить запись: переданные поля заменяются, carico/scarico прибавляются к остатку"
}
func (itemEditCmd) Usage() string {
	return "edit <id> [--codice X] [--descrizione X] [--um X] [--locazione X] [--data X] [--carico N] [--scarico N] [--foto file]"
}

func (itemEditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	id, args := splitID(args)
	form, err := parseItemForm("edit", args)
	if err != nil {
		return ErrUsage
	}
	if id == "" && len(form.rest) == 1 {
		id, form.rest = form.rest[0], nil
	}
	if len(form.rest) != 0 || !validID(id) {
		return ErrUsage
	}
	// пустой запрос ничего бы не изменил, кроме modified_by
	if len(form.fields) == 0 && form.foto == "" {
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
	if _, err := c.DoMultipart(ctx, http.MethodPut, "/inventory/"+id, form.fields, file, &it); err != nil {
		return sessionExpired(cfg, err)
	}
	fmt.Fprintln(Out, "Updated:")
	printItem(it)
	return nil
}

func init() { RegisterCmd(itemEditCmd{}) }
