package service

import (
	"InvKeeper/internal/model"
	"InvKeeper/internal/repo"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// DateLayout — формат data_ingresso.
const DateLayout = "2006-01-02"

// Upload — файл из multipart-части foto.
type Upload struct {
	FileName string
	Data     []byte
}

// ItemFields — поля запроса на создание/изменение.
// nil-указатель: поле не передано; Carico/Scarico задают приход и расход (дельта).
type ItemFields struct {
	CodiceArticolo *string
	Descrizione    *string
	UnitaMisura    *string
	Locazione      *string
	DataIngresso   *string

	Carico  int64
	Scarico int64

	File *Upload
}

// ItemFilter — фильтр списка записей.
type ItemFilter = repo.ItemFilter

// ItemService инкапсулирует бизнес-логику работы с Item.
type ItemService struct {
	repo   repo.ItemRepository
	vault  *AttachmentService
	logger *zap.SugaredLogger
}

func NewItemService(r repo.ItemRepository, vault *AttachmentService, logger *zap.SugaredLogger) *ItemService {
	return &ItemService{repo: r, vault: vault, logger: logger}
}

// column → максимальная длина
var textColumns = []struct {
	name string
	max  int
	get  func(f *ItemFields) *string
}{
	{"codice_articolo", 50, func(f *ItemFields) *string { return f.CodiceArticolo }},
	{"descrizione", 200, func(f *ItemFields) *string { return f.Descrizione }},
	{"unita_misura", 20, func(f *ItemFields) *string { return f.UnitaMisura }},
	{"locazione", 100, func(f *ItemFields) *string { return f.Locazione }},
	{"data_ingresso", 10, func(f *ItemFields) *string { return f.DataIngresso }},
}

// normalize обрезает пробелы и проверяет длины, дату и количества.
func (f *ItemFields) normalize() error {
	for _, c := range textColumns {
		p := c.get(f)
		if p == nil {
			continue
		}
		*p = strings.TrimSpace(*p)
		if utf8.RuneCountInString(*p) > c.max {
			return validationf(c.name, "at most %d characters", c.max)
		}
	}
	if f.DataIngresso != nil && *f.DataIngresso != "" {
		if _, err := time.Parse(DateLayout, *f.DataIngresso); err != nil {
			return validationf("data_ingresso", "expected date in YYYY-MM-DD format")
		}
	}
	if f.Carico < 0 || f.Scarico < 0 {
		return validationf("carico", "carico and scarico must be greater than or equal to zero")
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Create создаёт запись: quantita = carico - scarico, created_by = modified_by = actor.
func (s *ItemService) Create(ctx context.Context, actor string, f ItemFields) (*model.Item, error) {
	if actor == "" {
		return nil, ErrActorMissing
	}
	if err := f.normalize(); err != nil {
		return nil, err
	}
	code := deref(f.CodiceArticolo)
	if code == "" {
		return nil, validationf("codice_articolo", "required")
	}
	exists, err := s.repo.ExistsByCode(ctx, code, 0)
	if err != nil {
		return nil, fmt.Errorf("check article code: %w", err)
	}
	if exists {
		return nil, ErrArticleExists
	}

	it := &model.Item{
		CodiceArticolo: code,
		Descrizione:    deref(f.Descrizione),
		UnitaMisura:    deref(f.UnitaMisura),
		Locazione:      deref(f.Locazione),
		DataIngresso:   deref(f.DataIngresso),
		Carico:         f.Carico,
		Scarico:        f.Scarico,
		Quantita:       f.Carico - f.Scarico,
		CreatedBy:      actor,
		ModifiedBy:     actor,
	}

	var stored *model.Attachment
	if f.File != nil {
		stored, err = s.vault.Store(ctx, f.File.Data, f.File.FileName, actor)
		if err != nil {
			return nil, err
		}
		it.AttachmentToken = &stored.Token
	}

	if err := s.repo.Create(ctx, it); err != nil {
		s.discard(ctx, stored)
		if taken, lookupErr := s.repo.ExistsByCode(ctx, code, 0); lookupErr == nil && taken {
			return nil, ErrArticleExists
		}
		return nil, fmt.Errorf("create item: %w", err)
	}
	s.logger.Infow("item created", "id", it.ID, "codice_articolo", code, "actor", actor)
	return it, nil
}

// Update заменяет переданные поля и применяет дельту carico - scarico к хранимому quantita.
func (s *ItemService) Update(ctx context.Context, actor string, id int64, f ItemFields) (*model.Item, error) {
	if actor == "" {
		return nil, ErrActorMissing
	}
	if err := f.normalize(); err != nil {
		return nil, err
	}

	upd := repo.ItemUpdate{Fields: map[string]any{}, Carico: f.Carico, Scarico: f.Scarico, ModifiedBy: actor}
	if f.CodiceArticolo != nil {
		code := *f.CodiceArticolo
		if code == "" {
			return nil, validationf("codice_articolo", "cannot be empty")
		}
		upd.Fields["codice_articolo"] = code
	}
	for _, c := range textColumns[1:] {
		if p := c.get(&f); p != nil {
			upd.Fields[c.name] = *p
		}
	}

	var stored *model.Attachment
	if f.File != nil {
		var err error
		stored, err = s.vault.Store(ctx, f.File.Data, f.File.FileName, actor)
		if err != nil {
			return nil, err
		}
		upd.AttachmentToken = &stored.Token
	}

	it, prev, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		s.discard(ctx, stored)
		switch {
		case repo.IsNotFound(err):
			return nil, ErrNotFound
		case errors.Is(err, repo.ErrCodeTaken):
			return nil, ErrArticleExists
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	if prev != nil {
		s.invalidate(ctx, *prev, id)
	}
	s.logger.Infow("item updated", "id", id, "carico", f.Carico, "scarico", f.Scarico, "actor", actor)
	return it, nil
}

// Delete удаляет запись и её вложение.
func (s *ItemService) Delete(ctx context.Context, id int64) error {
	token, err := s.repo.Delete(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete item: %w", err)
	}
	if token != nil {
		s.invalidate(ctx, *token, id)
	}
	s.logger.Infow("item deleted", "id", id)
	return nil
}

// Get возвращает запись по id.
func (s *ItemService) Get(ctx context.Context, id int64) (*model.Item, error) {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// List возвращает записи по фильтру в порядке вставки.
func (s *ItemService) List(ctx context.Context, f ItemFilter) ([]model.Item, error) {
	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// invalidate: запись уже закоммичена, поэтому сбой только логируется; хвост подберёт PurgeOrphans.
func (s *ItemService) invalidate(ctx context.Context, token string, itemID int64) {
	if err := s.vault.Invalidate(ctx, token); err != nil {
		s.logger.Errorw("failed to invalidate attachment", "item_id", itemID, "error", err)
	}
}

func (s *ItemService) discard(ctx context.Context, a *model.Attachment) {
	if a == nil {
		return
	}
	if err := s.vault.Invalidate(ctx, a.Token); err != nil {
		s.logger.Errorw("failed to discard unused attachment", "error", err)
	}
}
