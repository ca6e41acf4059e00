package handlers

import (
	"InvKeeper/internal/model"
	"time"
)

// AttachmentDTO — описание вложения без байтов. Скачивание — GET /files/{token}.
type AttachmentDTO struct {
	Token             string `json:"token"`
	Kind              string `json:"kind"`
	Extension         string `json:"extension"`
	SuggestedFilename string `json:"suggested_filename"`
	ContentType       string `json:"content_type"`
	Size              int64  `json:"size"`
}

// ItemDTO — запись инвентаря в ответах API.
type ItemDTO struct {
	ID             int64          `json:"id"`
	CodiceArticolo string         `json:"codice_articolo"`
	Descrizione    string         `json:"descrizione"`
	UnitaMisura    string         `json:"unita_misura"`
	Quantita       int64          `json:"quantita"`
	Carico         int64          `json:"carico"`
	Scarico        int64          `json:"scarico"`
	Locazione      string         `json:"locazione"`
	DataIngresso   string         `json:"data_ingresso"`
	Attachment     *AttachmentDTO `json:"attachment,omitempty"`
	CreatedBy      string         `json:"created_by"`
	ModifiedBy     string         `json:"modified_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func toItemDTO(it *model.Item) ItemDTO {
	dto := ItemDTO{
		ID:             it.ID,
		CodiceArticolo: it.CodiceArticolo,
		Descrizione:    it.Descrizione,
		UnitaMisura:    it.UnitaMisura,
		Quantita:       it.Quantita,
		Carico:         it.Carico,
		Scarico:        it.Scarico,
		Locazione:      it.Locazione,
		DataIngresso:   it.DataIngresso,
		CreatedBy:      it.CreatedBy,
		ModifiedBy:     it.ModifiedBy,
		CreatedAt:      it.CreatedAt.UTC(),
		UpdatedAt:      it.UpdatedAt.UTC(),
	}
	if a := it.Attachment; a != nil {
		dto.Attachment = &AttachmentDTO{
			Token:             a.Token,
			Kind:              a.Kind,
			Extension:         a.Extension,
			SuggestedFilename: a.FileName,
			ContentType:       a.ContentType,
			Size:              a.Size,
		}
	}
	return dto
}

func toItemDTOs(items []model.Item) []ItemDTO {
	out := make([]ItemDTO, 0, len(items))
	for i := range items {
		out = append(out, toItemDTO(&items[i]))
	}
	return out
}
