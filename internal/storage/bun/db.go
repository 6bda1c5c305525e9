package bunrepo

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenSQLite opens (and creates, if needed) the sqlite database at path and
// makes sure the secrets table exists. Plain paths and "file:" DSNs are
// both accepted.
func OpenSQLite(ctx context.Context, path string) (*bun.DB, error) {
	dsn := strings.TrimSpace(path)
	if dsn == "" {
		return nil, fmt.Errorf("persistence: sqlite path is required")
	}
	if err := ensureSQLiteDir(dsn); err != nil {
		return nil, fmt.Errorf("persistence: create directory: %w", err)
	}

	sqldb, err := sql.Open(sqliteshim.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("persistence: open sqlite: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := NewSecretStore(db).CreateSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("persistence: create table for secrets: %w", err)
	}
	return db, nil
}

func ensureSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o700)
}
