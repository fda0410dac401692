package cache

import (
	"context"
	"database/sql"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"

	// Import sqlite driver for database/sql package
	_ "github.com/mattn/go-sqlite3"
)

// sqliteBackend 嵌入式持久缓存后端
type sqliteBackend struct {
	db    *sql.DB
	clock time2.Clock
}

// NewSQLiteBackend 创建 SQLite 缓存后端并初始化表结构
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewSQLiteBackend(path string, clock time2.Clock) (Backend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite cache")
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cache_expires ON cache(expires);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to initialize sqlite cache schema")
	}

	return &sqliteBackend{db: db, clock: clock}, nil
}

func (b *sqliteBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx,
		"SELECT value FROM cache WHERE key = ? AND expires > ?",
		key, b.clock.Now().Unix(),
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to read sqlite cache")
	}
	return value, true, nil
}

func (b *sqliteBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO cache (key, value, expires) VALUES (?, ?, ?)",
		key, value, b.clock.Now().Add(ttl).Unix(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to write sqlite cache")
	}
	return nil
}

func (b *sqliteBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, "DELETE FROM cache WHERE key = ?", key); err != nil {
		return errors.Wrap(err, "failed to delete from sqlite cache")
	}
	return nil
}

func (b *sqliteBackend) InvalidatePrefix(ctx context.Context, prefix string) error {
	if _, err := b.db.ExecContext(ctx, "DELETE FROM cache WHERE key LIKE ?", prefix+"%"); err != nil {
		return errors.Wrap(err, "failed to invalidate sqlite cache prefix")
	}
	return nil
}
