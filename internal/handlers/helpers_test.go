package handlers_test

import (
	"InvKeeper/internal/cache/local"
	"InvKeeper/internal/config"
	"InvKeeper/internal/handlers"
	"InvKeeper/internal/middleware"
	"InvKeeper/internal/repo"
	"InvKeeper/internal/service"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func testConfig() *config.Config {
	return &config.Config{
		AuthSecret:      testSecret,
		TokenTTL:        time.Hour,
		AttachmentMaxMB: 1,
		RateLimitRPS:    -1,
		RateLimitBurst:  1,
	}
}

// newTestRouter собирает полный роутер поверх in-memory SQLite
func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logger := zap.NewNop().Sugar()
	middleware.SetLogger(logger)

	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared&_time_format=sqlite")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	revoked, err := local.NewCache(local.Config{GCInterval: time.Hour})
	require.NoError(t, err)
	t.Cleanup(func() { _ = revoked.Close() })

	users := service.NewUserService(repo.NewUserRepository(db))
	users.SetHashCost(bcrypt.MinCost)
	vault := service.NewAttachmentService(repo.NewAttachmentRepository(db), logger, cfg.AttachmentMaxBytes())
	items := service.NewItemService(repo.NewItemRepository(db), vault, logger)

	h := handlers.NewHandler(handlers.Services{
		Users:       users,
		Sessions:    service.NewSessionService(cfg.AuthSecret, cfg.TokenTTL, revoked),
		Items:       items,
		Attachments: vault,
		Export:      service.NewExportService(items),
	}, logger, cfg)
	return h.Router
}

func do(t *testing.T, h http.Handler, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	switch p := payload.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(p)
	default:
		b, err := json.Marshal(p)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return do(t, h, method, path, token, body, "application/json")
}

// multipartBody: fields + необязательный файл foto
func multipartBody(t *testing.T, fields map[string]string, fileName string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("foto", fileName)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func message(t *testing.T, rr *httptest.ResponseRecorder) string {
	return decode[map[string]any](t, rr)["message"].(string)
}

func registerAndLogin(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()
	rr := doJSON(t, h, http.MethodPost, "/register", "", map[string]string{
		"username": username, "password": password, "confirm_password": password,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, h, http.MethodPost, "/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	tok := decode[map[string]any](t, rr)["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func createItem(t *testing.T, h http.Handler, token string, payload any) handlers.ItemDTO {
	t.Helper()
	rr := doJSON(t, h, http.MethodPost, "/inventory", token, payload)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[handlers.ItemDTO](t, rr)
}
