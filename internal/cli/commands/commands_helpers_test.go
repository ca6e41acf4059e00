package commands

import (
	"path/filepath"
	"testing"

	"InvKeeper/internal/config"
)

// withTempConfig возвращает конфиг клиента с файлом токена во временном каталоге
func withTempConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	return &config.Config{
		ServerURL: serverURL,
		TokenFile: filepath.Join(t.TempDir(), "token"),
	}
}

// loggedIn сохраняет токен, как после успешного login
func loggedIn(t *testing.T, cfg *config.Config, tok string) {
	t.Helper()
	if err := tokenStore(cfg).Save(tok); err != nil {
		t.Fatalf("save token: %v", err)
	}
}
