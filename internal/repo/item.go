package repo

import (
	"InvKeeper/internal/model"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ItemFilter — конъюнкция подстрочных фильтров без учёта регистра. Пустые поля игнорируются.
type ItemFilter struct {
	CodiceArticolo string
	Descrizione    string
	Locazione      string
}

// ItemUpdate описывает одно изменение записи.
// Fields — заменяемые колонки (имя колонки → значение), Carico/Scarico — дельты,
// AttachmentToken != nil заменяет вложение.
type ItemUpdate struct {
	Fields          map[string]any
	Carico          int64
	Scarico         int64
	AttachmentToken *string
	ModifiedBy      string
}

// ItemRepository определяет контракт доступа к Item для слоя сервиса.
type ItemRepository interface {
	Create(ctx context.Context, it *model.Item) error
	// GetByID возвращает запись с метаданными вложения (без байтов). gorm.ErrRecordNotFound, если нет.
	GetByID(ctx context.Context, id int64) (*model.Item, error)
	// List возвращает записи по фильтру в порядке вставки.
	List(ctx context.Context, f ItemFilter) ([]model.Item, error)
	// ExistsByCode проверяет занятость codice_articolo другой записью (excludeID=0: любой).
	ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error)
	// Update атомарно применяет изменение и возвращает обновлённую запись и токен вытесненного вложения.
	// Сначала проверяется существование записи (gorm.ErrRecordNotFound), затем занятость кода (ErrCodeTaken).
	Update(ctx context.Context, id int64, upd ItemUpdate) (*model.Item, *string, error)
	// Delete удаляет запись и возвращает токен её вложения (если был).
	Delete(ctx context.Context, id int64) (*string, error)
}

type itemRepo struct {
	db *gorm.DB
}

// NewItemRepository создаёт реализацию репозитория для Item.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepo{db: db}
}

// attachmentMeta — preload вложения без колонки data.
func attachmentMeta(tx *gorm.DB) *gorm.DB {
	return tx.Select("token", "kind", "extension", "file_name", "content_type", "size", "uploaded_by", "created_at")
}

func (r *itemRepo) Create(ctx context.Context, it *model.Item) error {
	if err := r.db.WithContext(ctx).Omit("Attachment").Create(it).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("Attachment", attachmentMeta).Take(it, it.ID).Error
}

func (r *itemRepo) GetByID(ctx context.Context, id int64) (*model.Item, error) {
	var it model.Item
	if err := r.db.WithContext(ctx).Preload("Attachment", attachmentMeta).Take(&it, id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *itemRepo) List(ctx context.Context, f ItemFilter) ([]model.Item, error) {
	q := r.db.WithContext(ctx).Preload("Attachment", attachmentMeta)
	q = whereContains(q, "codice_articolo", f.CodiceArticolo)
	q = whereContains(q, "descrizione", f.Descrizione)
	q = whereContains(q, "locazione", f.Locazione)

	var items []model.Item
	if err := q.Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepo) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	return codeTaken(r.db.WithContext(ctx), code, excludeID)
}

func codeTaken(db *gorm.DB, code any, excludeID int64) (bool, error) {
	var n int64
	q := db.Model(&model.Item{}).Where("codice_articolo = ?", code)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *itemRepo) Update(ctx context.Context, id int64, upd ItemUpdate) (*model.Item, *string, error) {
	var (
		out  model.Item
		prev *string
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur model.Item
		if err := tx.Select("id", "attachment_token").Take(&cur, id).Error; err != nil {
			return err
		}
		code, changesCode := upd.Fields["codice_articolo"]
		if changesCode {
			taken, err := codeTaken(tx, code, id)
			if err != nil {
				return err
			}
			if taken {
				return ErrCodeTaken
			}
		}

		set := make(map[string]any, len(upd.Fields)+5)
		for k, v := range upd.Fields {
			set[k] = v
		}
		// дельты применяются в том же UPDATE, что и остальные поля: read-modify-write делает БД
		set["carico"] = gorm.Expr("carico + ?", upd.Carico)
		set["scarico"] = gorm.Expr("scarico + ?", upd.Scarico)
		set["quantita"] = gorm.Expr("quantita + ?", upd.Carico-upd.Scarico)
		set["modified_by"] = upd.ModifiedBy
		if upd.AttachmentToken != nil {
			set["attachment_token"] = *upd.AttachmentToken
			if cur.AttachmentToken != nil && *cur.AttachmentToken != *upd.AttachmentToken {
				prev = cur.AttachmentToken
			}
		}

		res := tx.Model(&model.Item{}).Where("id = ?", id).Updates(set)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Preload("Attachment", attachmentMeta).Take(&out, id).Error
	})
	if err != nil {
		// уникальный индекс сработал на гонке двух обновлений: код успел занять другой
		if code, ok := upd.Fields["codice_articolo"]; ok && !errors.Is(err, ErrCodeTaken) && !IsNotFound(err) {
			if taken, lookupErr := codeTaken(r.db.WithContext(ctx), code, id); lookupErr == nil && taken {
				return nil, nil, ErrCodeTaken
			}
		}
		return nil, nil, err
	}
	return &out, prev, nil
}

func (r *itemRepo) Delete(ctx context.Context, id int64) (*string, error) {
	var token *string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur model.Item
		if err := tx.Select("id", "attachment_token").Take(&cur, id).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Item{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		token = cur.AttachmentToken
		return nil
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

// ErrCodeTaken: codice_articolo уже занят другой записью.
var ErrCodeTaken = errors.New("codice_articolo already used")

// IsNotFound — удобная проверка для слоя сервиса.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereContains добавляет lower(col) LIKE lower(%value%) с экранированием спецсимволов.
// Значение не обрезается: пробелы входят в искомую подстроку.
// Обе стороны понижаются одной и той же функцией БД, иначе È и è не совпадут.
func whereContains(q *gorm.DB, column, value string) *gorm.DB {
	if value == "" {
		return q
	}
	lower := "LOWER"
	if q.Dialector.Name() == "sqlite" {
		lower = unicodeLowerFunc
	}
	pattern := "%" + likeEscaper.Replace(value) + "%"
	return q.Where(lower+"("+column+") LIKE "+lower+"(?) ESCAPE '\\'", pattern)
}
