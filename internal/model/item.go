package model

import "time"

// Item — серверная модель записи инвентаря.
type Item struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	CodiceArticolo string `gorm:"size:50;not null;uniqueIndex"`
	Descrizione    string `gorm:"size:200"`
	UnitaMisura    string `gorm:"size:20"`
	Locazione      string `gorm:"size:100;index"`
	DataIngresso   string `gorm:"size:10"` // YYYY-MM-DD или пусто

	// Quantita = Carico - Scarico, обновляется одним UPDATE вместе с итогами.
	Quantita int64 `gorm:"not null;default:0"`
	Carico   int64 `gorm:"not null;default:0"`
	Scarico  int64 `gorm:"not null;default:0"`

	// Опциональная ссылка на attachments.token
	AttachmentToken *string     `gorm:"size:64;uniqueIndex"`
	Attachment      *Attachment `gorm:"foreignKey:AttachmentToken;references:Token;constraint:OnDelete:SET NULL"`

	CreatedBy  string `gorm:"size:64;not null"`
	ModifiedBy string `gorm:"size:64;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
