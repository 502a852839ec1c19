package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"countdown/internal/model"
)

// sqliteBusyTimeout lets a one-shot CLI command wait for the daemon's write
// instead of failing with SQLITE_BUSY.
const sqliteBusyTimeout = 5 * time.Second

// NewDB opens the SQLite state database and migrates the state and
// subscriber tables. SQL warnings go to logger.
func NewDB(dsn string, logger *log.Logger) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "countdown.db"
	}
	if logger == nil {
		logger = log.New(os.Stdout, "", log.LstdFlags)
	}

	memory := isMemoryDSN(dsn)
	if !memory {
		if err := ensureDirForSQLite(dsn); err != nil {
			return nil, err
		}
		dsn = withPragma(dsn, "_busy_timeout", fmt.Sprint(sqliteBusyTimeout.Milliseconds()))
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", dsn, err)
	}

	// One writer at a time; timers and history are saved as whole rows.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.StateEntry{}, &model.Subscriber{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return db, nil
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// withPragma appends a go-sqlite3 DSN parameter unless it is already set.
func withPragma(dsn, key, value string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + value
}

// ensureDirForSQLite creates the directory holding a file DSN.
func ensureDirForSQLite(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	path = strings.SplitN(path, "?", 2)[0]
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
