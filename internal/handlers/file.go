package handlers

import (
	"InvKeeper/internal/model"
	"InvKeeper/internal/service"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type FileHandler struct {
	Attachments *service.AttachmentService
	Logger      *zap.SugaredLogger
}

func NewFileHandler(attachments *service.AttachmentService, logger *zap.SugaredLogger) *FileHandler {
	return &FileHandler{Attachments: attachments, Logger: logger}
}

// Serve отдаёт файл по токену. Владелец записи не проверяется: достаточно любой валидной сессии.
func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	a, err := h.Attachments.Resolve(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, h.Logger, "Serve", err)
		return
	}

	disposition := "inline"
	if a.Kind == model.AttachmentOther {
		disposition = "attachment"
	}
	hdr := w.Header()
	hdr.Set("Content-Type", a.ContentType)
	hdr.Set("Content-Length", strconv.Itoa(len(a.Data)))
	hdr.Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": a.FileName}))
	hdr.Set("X-Content-Type-Options", "nosniff")
	hdr.Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data)
}
