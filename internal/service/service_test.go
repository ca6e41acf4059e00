package service

import (
	"InvKeeper/internal/repo"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testStack — сервисы поверх изолированной in-memory SQLite
type testStack struct {
	db     *gorm.DB
	users  *UserService
	vault  *AttachmentService
	items  *ItemService
	export *ExportService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared&_time_format=sqlite")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	logger := zap.NewNop().Sugar()
	users := NewUserService(repo.NewUserRepository(db))
	users.SetHashCost(4)
	vault := NewAttachmentService(repo.NewAttachmentRepository(db), logger, 1<<20)
	items := NewItemService(repo.NewItemRepository(db), vault, logger)
	return &testStack{
		db:     db,
		users:  users,
		vault:  vault,
		items:  items,
		export: NewExportService(items),
	}
}

func ptr(s string) *string { return &s }
