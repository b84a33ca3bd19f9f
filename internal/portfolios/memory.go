package portfolios

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type memoryPortfolioRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Portfolio
	bySlug map[string]uuid.UUID
}

// NewMemoryPortfolioRepository constructs an in-memory repository for portfolios.
func NewMemoryPortfolioRepository() PortfolioRepository {
	return &memoryPortfolioRepository{
		byID:   make(map[uuid.UUID]*Portfolio),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (m *memoryPortfolioRepository) Create(_ context.Context, portfolio *Portfolio) (*Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(portfolio.Slug)
	if _, exists := m.bySlug[key]; exists {
		return nil, ErrSlugExists
	}
	cloned := portfolio.Clone()
	m.byID[cloned.ID] = cloned
	m.bySlug[key] = cloned.ID
	return cloned.Clone(), nil
}

func (m *memoryPortfolioRepository) GetByID(_ context.Context, id uuid.UUID) (*Portfolio, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "portfolio", Key: id.String()}
	}
	return record.Clone(), nil
}

func (m *memoryPortfolioRepository) GetBySlug(_ context.Context, slug string) (*Portfolio, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.bySlug[strings.ToLower(slug)]
	if !ok {
		return nil, &NotFoundError{Resource: "portfolio", Key: slug}
	}
	return m.byID[id].Clone(), nil
}

func (m *memoryPortfolioRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*Portfolio, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Portfolio, 0)
	for _, record := range m.byID {
		if record.OwnerID == ownerID {
			out = append(out, record.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *Portfolio) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Slug, b.Slug)
	})
	return out, nil
}

func (m *memoryPortfolioRepository) Update(_ context.Context, portfolio *Portfolio) (*Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[portfolio.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "portfolio", Key: portfolio.ID.String()}
	}
	key := strings.ToLower(portfolio.Slug)
	if owner, taken := m.bySlug[key]; taken && owner != portfolio.ID {
		return nil, ErrSlugExists
	}
	delete(m.bySlug, strings.ToLower(existing.Slug))
	cloned := portfolio.Clone()
	m.byID[cloned.ID] = cloned
	m.bySlug[key] = cloned.ID
	return cloned.Clone(), nil
}

func (m *memoryPortfolioRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "portfolio", Key: id.String()}
	}
	delete(m.bySlug, strings.ToLower(existing.Slug))
	delete(m.byID, id)
	return nil
}
