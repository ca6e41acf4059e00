package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Error — ответ сервера с кодом ошибки и полем message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// Client — HTTP-клиент API инвентаря. Token передаётся как Authorization: Bearer.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: time.Minute},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, payload any) (*http.Request, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

// DoJSON отправляет запрос и раскодирует JSON-ответ в out (если out != nil).
// Статус >= 400 превращается в *Error.
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, payload, out any) (int, error) {
	req, err := c.newRequest(ctx, method, path, query, payload)
	if err != nil {
		return 0, err
	}
	return c.do(req, out)
}

// FilePart — файл для multipart-запроса.
type FilePart struct {
	Field    string
	FileName string
	Data     io.Reader
}

// DoMultipart отправляет поля формы и необязательный файл как multipart/form-data.
func (c *Client) DoMultipart(ctx context.Context, method, path string, fields map[string]string, file *FilePart, out any) (int, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return 0, err
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile(file.Field, file.FileName)
		if err != nil {
			return 0, err
		}
		if _, err := io.Copy(fw, file.Data); err != nil {
			return 0, fmt.Errorf("read %s: %w", file.FileName, err)
		}
	}
	if err := mw.Close(); err != nil {
		return 0, err
	}

	req, err := c.newRequest(ctx, method, path, nil, nil)
	if err != nil {
		return 0, err
	}
	req.Body = io.NopCloser(&body)
	req.ContentLength = int64(body.Len())
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) (int, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, errorFrom(resp.StatusCode, body)
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Download копирует тело ответа в w и возвращает заголовки.
func (c *Client) Download(ctx context.Context, path string, query url.Values, w io.Writer) (http.Header, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		return resp.Header, errorFrom(resp.StatusCode, body)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return resp.Header, err
	}
	return resp.Header, nil
}

func errorFrom(status int, body []byte) error {
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &m); err != nil || m.Message == "" {
		m.Message = strings.TrimSpace(string(body))
	}
	return &Error{Status: status, Message: m.Message}
}
