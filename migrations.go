package portfolio

import (
	"context"
	"embed"

	"github.com/goliatone/go-portfolio/internal/di"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

const migrationsRoot = "data/sql/migrations"

// GetMigrationsFS returns the embedded migration files for this package.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// Migrate applies the embedded migrations for the configured storage driver.
// It is a no-op for in-memory storage.
func (m *Module) Migrate(ctx context.Context) ([]string, error) {
	return di.ApplyMigrations(ctx, m.container.BunDB(), m.container.Config.Storage.Driver, migrationsFS, migrationsRoot)
}
