package portfolios

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const portfolioNamespace = "portfolio"

// BunPortfolioRepository implements PortfolioRepository with optional caching.
type BunPortfolioRepository struct {
	repo         repository.Repository[*Portfolio]
	cacheService cache.CacheService
	cachePrefix  string
}

var _ PortfolioRepository = (*BunPortfolioRepository)(nil)

// NewBunPortfolioRepository creates a repository without caching.
func NewBunPortfolioRepository(db *bun.DB) *BunPortfolioRepository {
	return NewBunPortfolioRepositoryWithCache(db, nil, nil)
}

// NewBunPortfolioRepositoryWithCache wraps the bun repository with go-repository-cache
// when both cache collaborators are supplied.
func NewBunPortfolioRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunPortfolioRepository {
	base := NewPortfolioRepository(db)
	repo := &BunPortfolioRepository{repo: base}
	if cacheService != nil && serializer != nil {
		repo.repo = repositorycache.New(base, cacheService, serializer)
		repo.cacheService = cacheService
		repo.cachePrefix = portfolioNamespace + cache.KeySeparator
	}
	return repo
}

func (r *BunPortfolioRepository) Create(ctx context.Context, portfolio *Portfolio) (*Portfolio, error) {
	record, err := r.repo.Create(ctx, portfolio)
	if err != nil {
		return nil, mapRepositoryError(err, "portfolio", portfolio.Slug)
	}
	return record, nil
}

func (r *BunPortfolioRepository) GetByID(ctx context.Context, id uuid.UUID) (*Portfolio, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "portfolio", id.String())
	}
	return record, nil
}

func (r *BunPortfolioRepository) GetBySlug(ctx context.Context, slug string) (*Portfolio, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "portfolio", slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "portfolio", Key: slug}
	}
	return records[0], nil
}

func (r *BunPortfolioRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Portfolio, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.owner_id = ?", ownerID).OrderExpr("?TableAlias.created_at ASC")
	}))
	if err != nil {
		return nil, mapRepositoryError(err, "portfolio", ownerID.String())
	}
	return records, nil
}

func (r *BunPortfolioRepository) Update(ctx context.Context, portfolio *Portfolio) (*Portfolio, error) {
	record, err := r.repo.Update(ctx, portfolio,
		repository.UpdateByID(portfolio.ID.String()),
		repository.UpdateColumns(
			"slug", "title", "status", "sections_config", "content",
			"theme_name", "theme_variant", "published_at", "updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "portfolio", portfolio.ID.String())
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunPortfolioRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Portfolio{ID: id}); err != nil {
		return mapRepositoryError(err, "portfolio", id.String())
	}
	return r.InvalidateCache(ctx)
}

// InvalidateCache drops cached portfolio lookups so slug and owner queries see writes.
func (r *BunPortfolioRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
