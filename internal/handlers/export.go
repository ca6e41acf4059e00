package handlers

import (
	"InvKeeper/internal/service"
	"bytes"
	"mime"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

type ExportHandler struct {
	ExportService *service.ExportService
	Logger        *zap.SugaredLogger
	now           func() time.Time
}

func NewExportHandler(export *service.ExportService, logger *zap.SugaredLogger) *ExportHandler {
	return &ExportHandler{ExportService: export, Logger: logger, now: time.Now}
}

// Export выгрузка CSV с теми же фильтрами, что у списка
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	n, err := h.ExportService.WriteCSV(r.Context(), &buf, filterFromQuery(r))
	if err != nil {
		writeError(w, h.Logger, "Export", err)
		return
	}

	name := service.ExportFileName(h.now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Export-Rows", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
