package model

import "time"

// Виды вложений.
const (
	AttachmentImage = "image"
	AttachmentPDF   = "pdf"
	AttachmentOther = "other"
)

// Attachment — бинарное содержимое файла записи и его метаданные.
// Data хранится в отдельной таблице, списки записей её не выбирают.
type Attachment struct {
	Token string `gorm:"primaryKey;size:64"`

	Kind        string    `gorm:"size:16;not null"`
	Extension   string    `gorm:"size:16;not null"`
	FileName    string    `gorm:"size:200;not null"`
	ContentType string    `gorm:"size:100;not null"`
	Size        int64     `gorm:"not null"`
	Data        []byte    `gorm:"not null"`
	UploadedBy  string    `gorm:"size:64"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}
