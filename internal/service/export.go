package service

import (
	"InvKeeper/internal/model"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

var exportHeader = []string{
	"Codice Articolo",
	"Descrizione",
	"Unità Misura",
	"Quantità",
	"Locazione",
	"Data Ingresso",
	"Allegato",
	"Creato da",
	"Modificato da",
}

// ExportService сериализует инвентарь в CSV. Состояние не меняет.
type ExportService struct {
	items *ItemService
}

func NewExportService(items *ItemService) *ExportService {
	return &ExportService{items: items}
}

// ExportFileName — имя файла выгрузки с датой.
func ExportFileName(t time.Time) string {
	return "inventario_" + t.Format(DateLayout) + ".csv"
}

// WriteCSV выбирает записи по фильтру и пишет их в w: заголовок + по строке на запись.
// Выборка выполняется до записи первого байта, поэтому ошибка хранилища не оставляет полуготовый поток.
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer, f ItemFilter) (int, error) {
	items, err := s.items.List(ctx, f)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for i := range items {
		if err := cw.Write(exportRow(&items[i])); err != nil {
			return i, fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return len(items), fmt.Errorf("flush csv: %w", err)
	}
	return len(items), nil
}

func exportRow(it *model.Item) []string {
	attachment := ""
	if it.Attachment != nil {
		attachment = it.Attachment.FileName
	}
	return []string{
		it.CodiceArticolo,
		it.Descrizione,
		it.UnitaMisura,
		strconv.FormatInt(it.Quantita, 10),
		it.Locazione,
		it.DataIngresso,
		attachment,
		it.CreatedBy,
		it.ModifiedBy,
	}
}
