package service

import (
	"InvKeeper/internal/model"
	"InvKeeper/internal/repo"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// 32 случайных байта → 64 hex-символа, 256 бит энтропии
const (
	tokenBytes      = 32
	maxTokenTries   = 3
	defaultBaseName = "allegato"
)

var (
	tokenPattern   = regexp.MustCompile(`^[0-9a-f]{64}$`)
	unsafeFileName = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

	imageExtensions = map[string]bool{"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true, "bmp": true}
	// SVG сюда намеренно не входит: может содержать скрипты
	imageMIMEs = map[string]bool{"image/png": true, "image/jpeg": true, "image/gif": true, "image/webp": true, "image/bmp": true}
)

// AttachmentService — хранилище вложений. Токен не выводится из id записи и не угадывается.
type AttachmentService struct {
	repo    repo.AttachmentRepository
	logger  *zap.SugaredLogger
	maxSize int64
	newTok  func() (string, error)
}

// NewAttachmentService создаёт хранилище вложений. maxSize <= 0: без ограничения.
func NewAttachmentService(r repo.AttachmentRepository, logger *zap.SugaredLogger, maxSize int64) *AttachmentService {
	return &AttachmentService{repo: r, logger: logger, maxSize: maxSize, newTok: newToken}
}

// Store сохраняет байты под свежим токеном. Вид определяется по содержимому и расширению.
func (s *AttachmentService) Store(ctx context.Context, data []byte, declaredName, actor string) (*model.Attachment, error) {
	if len(data) == 0 {
		return nil, validationf("foto", "empty file")
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, ErrTooLarge
	}

	a := describe(data, declaredName)
	a.Data = data
	a.Size = int64(len(data))
	a.UploadedBy = actor

	for i := 0; i < maxTokenTries; i++ {
		tok, err := s.newTok()
		if err != nil {
			return nil, fmt.Errorf("generate token: %w", err)
		}
		a.Token = tok
		created, err := s.repo.CreateIfAbsent(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("store attachment: %w", err)
		}
		if created {
			return a, nil
		}
		s.logger.Warnw("attachment token collision, retrying", "attempt", i+1)
	}
	return nil, errors.New("store attachment: could not allocate unique token")
}

// Resolve возвращает вложение с байтами. Проверка личности выполняется до вызова.
func (s *AttachmentService) Resolve(ctx context.Context, token string) (*model.Attachment, error) {
	if !tokenPattern.MatchString(token) {
		return nil, ErrNotFound
	}
	a, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	return a, nil
}

// Invalidate удаляет вложение. Повторный вызов: не ошибка.
func (s *AttachmentService) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}

// PurgeOrphans удаляет вложения, оставшиеся без записи (например, после сбоя между шагами).
// grace защищает только что загруженные файлы, ещё не привязанные к записи.
func (s *AttachmentService) PurgeOrphans(ctx context.Context, grace time.Duration) (int64, error) {
	n, err := s.repo.DeleteOrphans(ctx, time.Now().Add(-grace))
	if err != nil {
		return 0, fmt.Errorf("purge orphans: %w", err)
	}
	return n, nil
}

// describe определяет вид, расширение, MIME и предлагаемое имя файла.
func describe(data []byte, declaredName string) *model.Attachment {
	detected := mimetype.Detect(data)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(declaredName), "."))

	a := &model.Attachment{}
	switch {
	case detected.Is("application/pdf"):
		a.Kind, a.ContentType = model.AttachmentPDF, "application/pdf"
		ext = "pdf"
	case imageMIMEs[baseMIME(detected.String())]:
		a.Kind, a.ContentType = model.AttachmentImage, baseMIME(detected.String())
		if !imageExtensions[ext] {
			ext = strings.TrimPrefix(detected.Extension(), ".")
		}
	case ext == "pdf" && !isTextual(detected):
		// содержимое не распознано, но заявлен PDF
		a.Kind, a.ContentType = model.AttachmentPDF, "application/pdf"
	default:
		a.Kind, a.ContentType = model.AttachmentOther, "application/octet-stream"
		if ext == "" {
			ext = strings.TrimPrefix(detected.Extension(), ".")
		}
	}
	if ext == "" {
		ext = "bin"
	}
	a.Extension = ext
	a.FileName = suggestFileName(declaredName, ext)
	return a
}

func baseMIME(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		return strings.TrimSpace(m[:i])
	}
	return m
}

func isTextual(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// suggestFileName очищает заявленное имя и гарантирует нужное расширение.
func suggestFileName(declared, ext string) string {
	base := filepath.Base(strings.ReplaceAll(declared, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Trim(unsafeFileName.ReplaceAllString(base, "-"), "-.")
	if base == "" {
		base = defaultBaseName
	}
	return base + "." + ext
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
