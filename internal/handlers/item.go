package handlers

import (
	"InvKeeper/internal/config"
	"InvKeeper/internal/middleware"
	"InvKeeper/internal/service"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ItemHandler — CRUD записей инвентаря.
type ItemHandler struct {
	ItemService *service.ItemService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

// NewItemHandler создаёт хендлер items
func NewItemHandler(itemService *service.ItemService, logger *zap.SugaredLogger, cfg *config.Config) *ItemHandler {
	return &ItemHandler{ItemService: itemService, Logger: logger, Config: cfg}
}

func filterFromQuery(r *http.Request) service.ItemFilter {
	q := r.URL.Query()
	return service.ItemFilter{
		CodiceArticolo: q.Get("codice_articolo"),
		Descrizione:    q.Get("descrizione"),
		Locazione:      q.Get("locazione"),
	}
}

// itemID: нечисловой id означает, что такой записи нет
func itemID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// payloadError: 400 для формы, 413 для размера, остальное: как ошибка сервиса
func (h *ItemHandler) payloadError(w http.ResponseWriter, op string, err error) {
	var bad *badPayload
	if errors.As(err, &bad) {
		h.Logger.Warnw(op+": invalid payload", "error", err)
		writeMessage(w, http.StatusBadRequest, bad.msg)
		return
	}
	writeError(w, h.Logger, op, err)
}

// List список записей с фильтрами
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.ItemService.List(r.Context(), filterFromQuery(r))
	if err != nil {
		writeError(w, h.Logger, "List", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTOs(items))
}

// Get одна запись
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		writeError(w, h.Logger, "Get", service.ErrNotFound)
		return
	}
	it, err := h.ItemService.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.Logger, "Get", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(it))
}

// Create новая запись (JSON или multipart с файлом foto)
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUsernameFromContext(r.Context())
	fields, err := parseItemPayload(w, r, h.Config.AttachmentMaxBytes())
	if err != nil {
		h.payloadError(w, "Create", err)
		return
	}
	it, err := h.ItemService.Create(r.Context(), actor, fields)
	if err != nil {
		writeError(w, h.Logger, "Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemDTO(it))
}

// Update изменение записи; carico/scarico применяются как приращения
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		writeError(w, h.Logger, "Update", service.ErrNotFound)
		return
	}
	actor, _ := middleware.GetUsernameFromContext(r.Context())
	fields, err := parseItemPayload(w, r, h.Config.AttachmentMaxBytes())
	if err != nil {
		h.payloadError(w, "Update", err)
		return
	}
	it, err := h.ItemService.Update(r.Context(), actor, id, fields)
	if err != nil {
		writeError(w, h.Logger, "Update", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(it))
}

// Delete удаление записи вместе с вложением
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		writeError(w, h.Logger, "Delete", service.ErrNotFound)
		return
	}
	if err := h.ItemService.Delete(r.Context(), id); err != nil {
		writeError(w, h.Logger, "Delete", err)
		return
	}
	writeMessage(w, http.StatusOK, "item deleted")
}
