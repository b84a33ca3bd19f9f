package migrations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/bun"
)

var (
	ErrVersionRequired  = errors.New("migrations: version is required")
	ErrDuplicateVersion = errors.New("migrations: duplicate version")
	ErrEmptyMigration   = errors.New("migrations: migration has no statements")
)

// Migration is one ordered schema change.
type Migration struct {
	Version string
	Name    string
	SQL     string
}

// Statements splits the migration body on statement terminators, dropping
// comment lines.
func (m Migration) Statements() []string {
	var lines []string
	for _, line := range strings.Split(m.SQL, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}
	var out []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if trimmed := strings.TrimSpace(stmt); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type appliedMigration struct {
	bun.BaseModel `bun:"table:schema_migrations"`

	Version   string    `bun:"version,pk"`
	Name      string    `bun:"name,notnull"`
	AppliedAt time.Time `bun:"applied_at,notnull"`
}

// Registry keeps migrations sorted by version and applies the missing ones.
type Registry struct {
	mu         sync.RWMutex
	migrations []Migration
	now        func() time.Time
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{now: time.Now}
}

// Register adds a migration.
func (r *Registry) Register(m Migration) error {
	m.Version = strings.TrimSpace(m.Version)
	if m.Version == "" {
		return ErrVersionRequired
	}
	if len(m.Statements()) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyMigration, m.Version)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.migrations {
		if existing.Version == m.Version {
			return fmt.Errorf("%w: %s", ErrDuplicateVersion, m.Version)
		}
	}
	r.migrations = append(r.migrations, m)
	slices.SortFunc(r.migrations, func(a, b Migration) int {
		return strings.Compare(a.Version, b.Version)
	})
	return nil
}

// RegisterFS registers every "<version>_<name>.up.sql" file found in dir.
func (r *Registry) RegisterFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), ".up.sql")
		version, name, _ := strings.Cut(base, "_")
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		if err := r.Register(Migration{Version: version, Name: name, SQL: string(data)}); err != nil {
			return err
		}
	}
	return nil
}

// Migrations returns the registered migrations in version order.
func (r *Registry) Migrations() []Migration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.migrations)
}

// Apply runs every migration not yet recorded in schema_migrations, each in
// its own transaction, and returns the versions it applied.
func (r *Registry) Apply(ctx context.Context, db bun.IDB) ([]string, error) {
	if _, err := db.NewCreateTable().Model((*appliedMigration)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("migrations: create tracking table: %w", err)
	}

	var rows []appliedMigration
	if err := db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, fmt.Errorf("migrations: read applied: %w", err)
	}
	done := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		done[row.Version] = struct{}{}
	}

	var applied []string
	for _, migration := range r.Migrations() {
		if _, ok := done[migration.Version]; ok {
			continue
		}
		err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, stmt := range migration.Statements() {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			_, err := tx.NewInsert().Model(&appliedMigration{
				Version:   migration.Version,
				Name:      migration.Name,
				AppliedAt: r.now().UTC(),
			}).Exec(ctx)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("migrations: apply %s_%s: %w", migration.Version, migration.Name, err)
		}
		applied = append(applied, migration.Version)
	}
	return applied, nil
}
