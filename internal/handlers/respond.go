package handlers

import (
	"InvKeeper/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError переводит ошибку сервиса в HTTP-статус. Подробности 500 только в лог.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	var vErr *service.ValidationError
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &vErr),
		errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrWeakPassword):
		logger.Warnw(op+": invalid input", "error", err)
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), service.IsAuthError(err):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrArticleExists):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrTooLarge), errors.As(err, &tooBig):
		writeMessage(w, http.StatusRequestEntityTooLarge, service.ErrTooLarge.Error())
	default:
		logger.Errorw(op+": internal error", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}
