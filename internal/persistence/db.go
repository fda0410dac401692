package persistence

import (
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	// Import postgres driver for database/sql package
	_ "github.com/lib/pq"
)

// NewDB 打开 PostgreSQL 连接池并校验连通性
func NewDB(cfg config.Database) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return db, nil
}
