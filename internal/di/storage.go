package di

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-portfolio/internal/migrations"
	"github.com/goliatone/go-portfolio/internal/runtimeconfig"
)

// OpenDatabase opens the bun handle described by cfg. The memory driver
// returns nil so the container falls back to in-memory repositories.
func OpenDatabase(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "memory", "":
		return nil, nil
	case "sqlite":
		sqlDB, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case "postgres":
		sqlDB, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrStorageDriverUnknown, cfg.Driver)
	}
}

// ApplyMigrations runs the dialect specific migrations found under
// <root>/<driver> in fsys and returns the versions applied.
func ApplyMigrations(ctx context.Context, db *bun.DB, driver string, fsys fs.FS, root string) ([]string, error) {
	if db == nil {
		return nil, nil
	}
	dir := strings.ToLower(strings.TrimSpace(driver))
	if root != "" {
		dir = strings.TrimRight(root, "/") + "/" + dir
	}
	registry := migrations.NewRegistry()
	if err := registry.RegisterFS(fsys, dir); err != nil {
		return nil, fmt.Errorf("di: load migrations %s: %w", dir, err)
	}
	return registry.Apply(ctx, db)
}
