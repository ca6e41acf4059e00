package middleware

import (
	"InvKeeper/internal/service"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeAuth принимает только токен "good"
type fakeAuth struct {
	err error
}

func (f fakeAuth) Validate(_ context.Context, raw string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if raw == "good" {
		return "alice", nil
	}
	return "", service.ErrTokenInvalid
}

func protected(a Authenticator) http.Handler {
	return WithAuth(a)(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetUsernameFromContext(r.Context())
		tok, _ := GetTokenFromContext(r.Context())
		_, _ = w.Write([]byte(u + ":" + tok))
	})))
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not json: %v", err)
	}
	return body["message"]
}

// Тест: валидный Bearer: имя пользователя попадает в контекст
func TestWithAuth_ValidBearerSetsUsername(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rr := httptest.NewRecorder()
	protected(fakeAuth{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", rr.Code)
	}
	if rr.Body.String() != "alice:good" {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

// Тест: без заголовка: WithAuth пропускает анонимно, RequireAuth отвечает 401
func TestWithAuth_NoHeaderLeavesAnonymous(t *testing.T) {
	h := WithAuth(fakeAuth{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUsernameFromContext(r.Context()); ok {
			t.Fatalf("username must not be set without token")
		}
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	protected(fakeAuth{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if msg := decodeMessage(t, rr); msg != service.ErrTokenMissing.Error() {
		t.Fatalf("unexpected message %q", msg)
	}
}

// Тест: невалидный и просроченный токен: 401 с разными сообщениями
func TestRequireAuth_InvalidAndExpired(t *testing.T) {
	cases := []struct {
		auth Authenticator
		want string
	}{
		{fakeAuth{}, service.ErrTokenInvalid.Error()},
		{fakeAuth{err: service.ErrTokenExpired}, service.ErrTokenExpired.Error()},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad")
		rr := httptest.NewRecorder()
		protected(c.auth).ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
		if msg := decodeMessage(t, rr); msg != c.want {
			t.Fatalf("message: want %q, got %q", c.want, msg)
		}
	}
}

// Тест: сбой хранилища отзывов: 500 без подробностей
func TestRequireAuth_BackendFailure(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rr := httptest.NewRecorder()
	protected(fakeAuth{err: errors.New("redis down")}).ServeHTTP(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if msg := decodeMessage(t, rr); msg != "internal error" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if got := BearerToken(req); got != want {
			t.Fatalf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
