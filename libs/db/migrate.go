package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending goose migration found in dir of fsys and returns
// the schema version afterwards.
func Migrate(ctx context.Context, pool *Pool, fsys fs.FS, dir string) (int64, error) {
	if pool == nil || pool.Pool == nil {
		return 0, errors.New("db not configured")
	}

	// goose needs database/sql; closing this handle leaves the pool open.
	sqlDB := stdlib.OpenDBFromPool(pool.Pool)
	defer func() { _ = sqlDB.Close() }()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}
