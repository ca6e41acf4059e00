package commands

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// --- login tests ---
func TestLogin_Run_SuccessAndErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "alice" || req.Password != "secret" {
			http.Error(w, `{"message":"Invalid username or password"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Login successful","token":"tok-123","expires_at":"2030-01-01T00:00:00Z"}`))
	}))
	defer ts.Close()

	cfg := withTempConfig(t, ts.URL)
	cmd := loginCmd{}
	out := withStdoutCapture(t, func() {
		if err := cmd.Run(context.Background(), cfg, []string{"alice", "secret"}); err != nil {
			t.Fatalf("login should succeed: %v", err)
		}
	})
	if !strings.Contains(out, "Logged in successfully") {
		t.Fatalf("unexpected output: %q", out)
	}
	tok, err := tokenStore(cfg).Load()
	if err != nil || tok != "tok-123" {
		t.Fatalf("token not saved: %q %v", tok, err)
	}

	// неверный пароль
	cfgBad := withTempConfig(t, ts.URL)
	err = cmd.Run(context.Background(), cfgBad, []string{"alice", "bad"})
	if err == nil || !strings.Contains(err.Error(), "invalid username or password") {
		t.Fatalf("expected credentials error, got %v", err)
	}
	if _, err := tokenStore(cfgBad).Load(); err == nil {
		t.Fatalf("token must not be saved on failed login")
	}

	// недостаточно аргументов → ErrUsage
	if err := cmd.Run(context.Background(), cfg, []string{"onlyLogin"}); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}

	// server 500 → ошибка
	ts500 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts500.Close()
	if err := cmd.Run(context.Background(), withTempConfig(t, ts500.URL), []string{"a", "b"}); err == nil {
		t.Fatalf("expected error for 500")
	}
}

// --- register tests ---
func TestRegister_Run_SuccessAndErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/register" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.ConfirmPassword != req.Password {
			t.Errorf("confirm_password must repeat the password")
		}
		if req.Username == "taken" {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"Username already exists"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"User registered successfully"}`))
	}))
	defer ts.Close()

	cfg := withTempConfig(t, ts.URL)
	cmd := registerCmd{}
	if err := cmd.Run(context.Background(), cfg, []string{"bob", "Secret1!"}); err != nil {
		t.Fatalf("register should succeed: %v", err)
	}
	if err := cmd.Run(context.Background(), cfg, []string{"taken", "Secret1!"}); err == nil {
		t.Fatalf("expected conflict error")
	}
	if err := cmd.Run(context.Background(), cfg, []string{"onlyLogin"}); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}

	ts400 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Password too weak"}`))
	}))
	defer ts400.Close()
	err := cmd.Run(context.Background(), withTempConfig(t, ts400.URL), []string{"bob", "pwd"})
	if err == nil || !strings.Contains(err.Error(), "Password too weak") {
		t.Fatalf("expected server message in error, got %v", err)
	}
}

func TestLogout_Run(t *testing.T) {
	var revoked string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logout" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		revoked = r.Header.Get("Authorization")
		if revoked == "Bearer stale" {
			http.Error(w, `{"message":"Token has expired"}`, http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"message":"Logout successful"}`))
	}))
	defer ts.Close()

	cfg := withTempConfig(t, ts.URL)
	loggedIn(t, cfg, "tok-1")
	if err := (logoutCmd{}).Run(context.Background(), cfg, nil); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if revoked != "Bearer tok-1" {
		t.Fatalf("server did not receive token, got %q", revoked)
	}
	if _, err := tokenStore(cfg).Load(); err == nil {
		t.Fatalf("token must be cleared")
	}

	// протухший токен удаляется локально без ошибки
	loggedIn(t, cfg, "stale")
	if err := (logoutCmd{}).Run(context.Background(), cfg, nil); err != nil {
		t.Fatalf("logout with stale token: %v", err)
	}
	if _, err := tokenStore(cfg).Load(); err == nil {
		t.Fatalf("stale token must be cleared")
	}

	// без токена: просто сообщение
	out := withStdoutCapture(t, func() {
		if err := (logoutCmd{}).Run(context.Background(), cfg, nil); err != nil {
			t.Fatalf("logout without token: %v", err)
		}
	})
	if !strings.Contains(out, "Not logged in") {
		t.Fatalf("unexpected output: %q", out)
	}
}
