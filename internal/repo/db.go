package repo

import (
	"InvKeeper/internal/model"
	"database/sql/driver"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"modernc.org/sqlite"
)

// unicodeLowerFunc: встроенный LOWER в SQLite понижает только A-Z, фильтры по тексту идут через эту функцию
const unicodeLowerFunc = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(unicodeLowerFunc, 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// DefaultSQLiteDSN используется, когда DATABASE_URI не задан.
const DefaultSQLiteDSN = "file:inventory.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"

// InitDB открывает БД по DSN и применяет миграции.
// postgres://, postgresql:// и key=value DSN уходят в Postgres, всё остальное: в SQLite (modernc, без cgo).
func InitDB(dsn string) (*gorm.DB, error) {
	var (
		dial     gorm.Dialector
		isSQLite bool
	)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		dial = postgres.Open(dsn)
	default:
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
		isSQLite = true
	}

	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if isSQLite {
		// SQLite не любит конкурентных писателей: один коннект сериализует запись
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sql db: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&model.User{}, &model.Attachment{}, &model.Item{}); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return db, nil
}
