package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"text/tabwriter"

	"InvKeeper/internal/config"
)

// Item — запись инвентаря в ответе сервера.
type Item struct {
	ID             int64  `json:"id"`
	CodiceArticolo string `json:"codice_articolo"`
	Descrizione    string `json:"descrizione"`
	UnitaMisura    string `json:"unita_misura"`
	Quantita       int64  `json:"quantita"`
	Locazione      string `json:"locazione"`
	DataIngresso   string `json:"data_ingresso"`
	Attachment     *struct {
		Token             string `json:"token"`
		Kind              string `json:"kind"`
		SuggestedFilename string `json:"suggested_filename"`
	} `json:"attachment"`
	ModifiedBy string `json:"modified_by"`
}

// parseFilters разбирает --codice/--descrizione/--locazione; позиционные аргументы не допускаются
func parseFilters(name string, args []string) (url.Values, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	codice := fs.String("codice", "", "codice_articolo contains")
	descr := fs.String("descrizione", "", "descrizione contains")
	loc := fs.String("locazione", "", "locazione contains")
	if err := fs.Parse(args); err != nil {
		return nil, nil, ErrUsage
	}
	q := url.Values{}
	if *codice != "" {
		q.Set("codice_articolo", *codice)
	}
	if *descr != "" {
		q.Set("descrizione", *descr)
	}
	if *loc != "" {
		q.Set("locazione", *loc)
	}
	return q, fs.Args(), nil
}

type itemsCmd struct{}

func (itemsCmd) Name() string { return "items" }
func (itemsCmd) Description() string {
	return "Показать записи инвентаря"
}
func (itemsCmd) Usage() string {
	return "items [--codice X] [--descrizione X] [--locazione X]"
}

func (itemsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	q, rest, err := parseFilters("items", args)
	if err != nil || len(rest) != 0 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	var list []Item
	if _, err := c.DoJSON(ctx, http.MethodGet, "/inventory", q, nil, &list); err != nil {
		return sessionExpired(cfg, err)
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "Нет записей")
		return nil
	}

	tw := tabwriter.NewWriter(Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODICE\tDESCRIZIONE\tQTA\tUM\tLOCAZIONE\tINGRESSO\tALLEGATO")
	for _, it := range list {
		att := "-"
		if it.Attachment != nil {
			att = it.Attachment.Kind + " " + it.Attachment.Token
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			it.ID, it.CodiceArticolo, it.Descrizione, it.Quantita, it.UnitaMisura, it.Locazione, it.DataIngresso, att)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

func init() { RegisterCmd(itemsCmd{}) }
