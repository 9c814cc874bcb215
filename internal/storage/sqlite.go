package storage

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// path that opens a private in-memory database
const MemoryPath = ":memory:"

// opens a sqlite database, creating its directory when needed
// a single connection serializes writers and keeps :memory: databases alive
func OpenSQLite(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	pragmas := []string{"busy_timeout(30000)", "foreign_keys(1)"}

	if path != MemoryPath {
		path = filepath.Clean(path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite data dir: %w", err)
		}

		pragmas = append(pragmas, "journal_mode(WAL)", "synchronous(NORMAL)")
	}

	dsn := path + "?" + url.Values{"_pragma": pragmas}.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return db, nil
}
