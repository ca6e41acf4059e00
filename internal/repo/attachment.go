package repo

import (
	"InvKeeper/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttachmentRepository — хранилище файлов, привязанных к записям инвентаря.
type AttachmentRepository interface {
	// CreateIfAbsent пытается создать запись. Если токен уже занят: ничего не делает.
	// Возвращает created=true если запись была создана в этой операции.
	CreateIfAbsent(ctx context.Context, a *model.Attachment) (created bool, err error)
	// GetByToken возвращает вложение вместе с данными. gorm.ErrRecordNotFound, если токена нет.
	GetByToken(ctx context.Context, token string) (*model.Attachment, error)
	// Delete идемпотентно удаляет вложение.
	Delete(ctx context.Context, token string) error
	// DeleteOrphans удаляет вложения старше before, на которые не ссылается ни одна запись.
	DeleteOrphans(ctx context.Context, before time.Time) (int64, error)
}

type attachmentRepo struct {
	db *gorm.DB
}

// NewAttachmentRepository создаёт реализацию репозитория вложений.
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepo{db: db}
}

func (r *attachmentRepo) CreateIfAbsent(ctx context.Context, a *model.Attachment) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoNothing: true,
	}).Create(a)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *attachmentRepo) GetByToken(ctx context.Context, token string) (*model.Attachment, error) {
	var a model.Attachment
	if err := r.db.WithContext(ctx).Where("token = ?", token).Take(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attachmentRepo) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.Attachment{}).Error
}

func (r *attachmentRepo) DeleteOrphans(ctx context.Context, before time.Time) (int64, error) {
	referenced := r.db.Model(&model.Item{}).
		Select("attachment_token").
		Where("attachment_token IS NOT NULL")
	tx := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Where("token NOT IN (?)", referenced).
		Delete(&model.Attachment{})
	return tx.RowsAffected, tx.Error
}
