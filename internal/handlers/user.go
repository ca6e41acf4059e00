package handlers

import (
	"InvKeeper/internal/middleware"
	"InvKeeper/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// UserHandler — регистрация, вход, выход и сброс пароля.
type UserHandler struct {
	UserService *service.UserService
	Sessions    *service.SessionService
	Logger      *zap.SugaredLogger
}

func NewUserHandler(users *service.UserService, sessions *service.SessionService, logger *zap.SugaredLogger) *UserHandler {
	return &UserHandler{UserService: users, Sessions: sessions, Logger: logger}
}

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Username        string `json:"username"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

const errPasswordsMismatch = "passwords do not match"

func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Register регистрация пользователя
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeStrict(r, &req); err != nil {
		h.Logger.Warnw("Register: invalid request body", "error", err)
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}
	if service.NormalizeUsername(req.Username) == "" || req.Password == "" || req.ConfirmPassword == "" {
		writeMessage(w, http.StatusBadRequest, "missing data")
		return
	}
	if req.Password != req.ConfirmPassword {
		writeMessage(w, http.StatusBadRequest, errPasswordsMismatch)
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.Logger, "Register", err)
		return
	}
	h.Logger.Infow("user registered", "username", user.Username)
	writeJSON(w, http.StatusCreated, map[string]string{
		"message":  "registration successful",
		"username": user.Username,
	})
}

// Login вход и выдача bearer-токена
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeStrict(r, &req); err != nil {
		h.Logger.Warnw("Login: invalid request body", "error", err)
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "missing data")
		return
	}

	user, err := h.UserService.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.Logger, "Login", err)
		return
	}
	tok, err := h.Sessions.Issue(user.Username)
	if err != nil {
		writeError(w, h.Logger, "Login", err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Message: "login successful", Token: tok.Value, ExpiresAt: tok.ExpiresAt.UTC()})
}

// Logout отзывает предъявленный токен
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	raw, _ := middleware.GetTokenFromContext(r.Context())
	if err := h.Sessions.Revoke(r.Context(), raw); err != nil {
		writeError(w, h.Logger, "Logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "logout successful")
}

// UsernameAvailable проверка имени при вводе
func (h *UserHandler) UsernameAvailable(w http.ResponseWriter, r *http.Request) {
	username := service.NormalizeUsername(r.URL.Query().Get("username"))
	if username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"available": false, "message": "missing username"})
		return
	}
	ok, err := h.UserService.CheckAvailability(r.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrInvalidUsername) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"available": false, "message": err.Error()})
			return
		}
		writeError(w, h.Logger, "UsernameAvailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": ok})
}

// ResetPassword сброс пароля по имени пользователя
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeStrict(r, &req); err != nil {
		h.Logger.Warnw("ResetPassword: invalid request body", "error", err)
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}
	if service.NormalizeUsername(req.Username) == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		writeMessage(w, http.StatusBadRequest, "missing data")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		writeMessage(w, http.StatusBadRequest, errPasswordsMismatch)
		return
	}

	if err := h.UserService.ResetPassword(r.Context(), req.Username, req.NewPassword); err != nil {
		writeError(w, h.Logger, "ResetPassword", err)
		return
	}
	h.Logger.Infow("password reset", "username", service.NormalizeUsername(req.Username))
	writeMessage(w, http.StatusOK, "password reset, log in with the new credentials")
}
