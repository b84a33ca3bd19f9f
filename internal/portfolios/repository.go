package portfolios

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewPortfolioRepository creates the go-repository-bun repository for portfolios.
func NewPortfolioRepository(db *bun.DB) repository.Repository[*Portfolio] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Portfolio]{
		NewRecord:          func() *Portfolio { return &Portfolio{} },
		GetID:              func(p *Portfolio) uuid.UUID { return p.ID },
		SetID:              func(p *Portfolio, id uuid.UUID) { p.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(p *Portfolio) string { return p.Slug },
	})
}
