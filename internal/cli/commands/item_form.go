package commands

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"InvKeeper/internal/cli/api"
)

// itemFlags: флаг → поле формы сервера
var itemFlags = []struct{ flag, field, help string }{
	{"codice", "codice_articolo", "codice articolo"},
	{"descrizione", "descrizione", "descrizione"},
	{"um", "unita_misura", "unità di misura"},
	{"locazione", "locazione", "locazione"},
	{"data", "data_ingresso", "data ingresso YYYY-MM-DD"},
}

// itemForm — разобранные флаги add/edit. В fields попадают только явно заданные флаги.
type itemForm struct {
	fields map[string]string
	foto   string
	rest   []string
}

func parseItemForm(name string, args []string) (*itemForm, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, f := range itemFlags {
		fs.String(f.flag, "", f.help)
	}
	carico := fs.Int64("carico", 0, "приход")
	scarico := fs.Int64("scarico", 0, "расход")
	foto := fs.String("foto", "", "путь к файлу вложения")
	if err := fs.Parse(args); err != nil {
		return nil, ErrUsage
	}
	if *carico < 0 || *scarico < 0 {
		return nil, ErrUsage
	}

	form := &itemForm{fields: map[string]string{}, foto: *foto, rest: fs.Args()}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "carico":
			form.fields["carico"] = strconv.FormatInt(*carico, 10)
		case "scarico":
			form.fields["scarico"] = strconv.FormatInt(*scarico, 10)
		case "foto":
		default:
			for _, it := range itemFlags {
				if it.flag == f.Name {
					form.fields[it.field] = f.Value.String()
				}
			}
		}
	})
	return form, nil
}

// openFoto открывает файл вложения; nil, если --foto не задан
func (f *itemForm) openFoto() (*api.FilePart, func(), error) {
	if f.foto == "" {
		return nil, func() {}, nil
	}
	file, err := os.Open(f.foto)
	if err != nil {
		return nil, nil, err
	}
	return &api.FilePart{Field: "foto", FileName: filepath.Base(f.foto), Data: file}, func() { _ = file.Close() }, nil
}

// splitID выносит id вперёд: допускаются и `edit 5 --scarico 3`, и `edit --scarico 3 5`
func splitID(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}

func validID(s string) bool {
	n, err := strconv.ParseInt(s, 10, 64)
	return err == nil && n > 0
}
