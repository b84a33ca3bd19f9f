package markdown

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/portfolios"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

var (
	ErrPortfoliosRequired = errors.New("markdown importer: portfolio service is required")
	ErrOwnerRequired      = errors.New("markdown importer: owner is required")
	ErrPortfolioExists    = errors.New("markdown importer: portfolio exists; enable overwrite to update it")
)

// PortfolioStore is the part of the portfolio service the importer needs.
type PortfolioStore interface {
	Create(ctx context.Context, req portfolios.CreateRequest) (*portfolios.Portfolio, error)
	GetBySlug(ctx context.Context, slug string) (*portfolios.Portfolio, error)
	SavePortfolioConfig(ctx context.Context, req portfolios.SaveConfigRequest) (*portfolios.Portfolio, error)
	UpdateDetails(ctx context.Context, req portfolios.UpdateDetailsRequest) (*portfolios.Portfolio, error)
	Publish(ctx context.Context, req portfolios.PublishRequest) (*portfolios.Portfolio, error)
}

// ImportOptions controls a single import run.
type ImportOptions struct {
	OwnerID   uuid.UUID
	Overwrite bool
	DryRun    bool
}

// ImportResult reports what happened to one document.
type ImportResult struct {
	Path      string
	Slug      string
	Portfolio *portfolios.Portfolio
	Created   bool
	Updated   bool
	Published bool
	Skipped   bool
}

// Importer turns markdown documents into portfolios.
type Importer struct {
	store  PortfolioStore
	logger interfaces.Logger
}

// NewImporter builds an Importer.
func NewImporter(store PortfolioStore, logger interfaces.Logger) *Importer {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Importer{store: store, logger: logger}
}

// Import creates the portfolio described by doc, or updates it when it
// already exists and opts.Overwrite is set. Existing portfolios are replaced
// wholesale: front matter sections become the stored overrides.
func (i *Importer) Import(ctx context.Context, doc *Document, opts ImportOptions) (*ImportResult, error) {
	if i == nil || i.store == nil {
		return nil, ErrPortfoliosRequired
	}
	if opts.OwnerID == uuid.Nil {
		return nil, ErrOwnerRequired
	}
	result := &ImportResult{Path: doc.Path, Slug: doc.Slug}
	logger := logging.WithFields(i.logger, map[string]any{"path": doc.Path, "slug": doc.Slug})

	var existing *portfolios.Portfolio
	if doc.Slug != "" {
		found, err := i.store.GetBySlug(ctx, doc.Slug)
		switch {
		case err == nil:
			existing = found
		case !portfolios.IsNotFound(err):
			return nil, err
		}
	}

	if existing != nil && !opts.Overwrite {
		return nil, fmt.Errorf("%w: %s", ErrPortfolioExists, existing.Slug)
	}
	if opts.DryRun {
		result.Skipped = true
		result.Portfolio = existing
		logger.Info("markdown.import.dry_run", "exists", existing != nil)
		return result, nil
	}

	var (
		portfolio *portfolios.Portfolio
		err       error
	)
	if existing == nil {
		portfolio, err = i.store.Create(ctx, portfolios.CreateRequest{
			OwnerID:        opts.OwnerID,
			Title:          doc.Title,
			Slug:           doc.Slug,
			SectionsConfig: doc.Sections,
			Content:        doc.Content,
			ThemeName:      doc.ThemeName,
			ThemeVariant:   doc.ThemeVariant,
		})
		result.Created = err == nil
	} else {
		portfolio, err = i.update(ctx, existing, doc, opts.OwnerID)
		result.Updated = err == nil
	}
	if err != nil {
		logger.Error("markdown.import.failed", "error", err)
		return nil, err
	}

	if doc.Published && !portfolio.IsPublished() {
		portfolio, err = i.store.Publish(ctx, portfolios.PublishRequest{ID: portfolio.ID, ActorID: opts.OwnerID})
		if err != nil {
			return nil, err
		}
		result.Published = true
	}

	result.Slug = portfolio.Slug
	result.Portfolio = portfolio
	logger.Info("markdown.import.success", "created", result.Created, "updated", result.Updated)
	return result, nil
}

func (i *Importer) update(ctx context.Context, existing *portfolios.Portfolio, doc *Document, actor uuid.UUID) (*portfolios.Portfolio, error) {
	details := portfolios.UpdateDetailsRequest{ID: existing.ID, ActorID: actor}
	if doc.Title != "" {
		details.Title = &doc.Title
	}
	if doc.ThemeName != "" {
		details.ThemeName = &doc.ThemeName
		details.ThemeVariant = &doc.ThemeVariant
	}
	if _, err := i.store.UpdateDetails(ctx, details); err != nil {
		return nil, err
	}

	// Fields missing from the document are cleared so the file stays the
	// source of truth.
	patch := make(map[string]any, len(existing.Content)+len(doc.Content))
	for key := range existing.Content {
		patch[key] = nil
	}
	for key, value := range doc.Content {
		patch[key] = value
	}
	return i.store.SavePortfolioConfig(ctx, portfolios.SaveConfigRequest{
		ID:             existing.ID,
		ActorID:        actor,
		SectionsConfig: doc.Sections.Clone(),
		ContentPatch:   patch,
	})
}

// BatchResult summarises a directory import.
type BatchResult struct {
	Results []*ImportResult
	Failed  map[string]error
}

// Counts returns the number of created, updated and skipped documents.
func (b *BatchResult) Counts() (created, updated, skipped int) {
	for _, result := range b.Results {
		switch {
		case result.Created:
			created++
		case result.Updated:
			updated++
		case result.Skipped:
			skipped++
		}
	}
	return created, updated, skipped
}

// ImportDirectory imports every document loader discovers under dir. A failing
// document is recorded and the run continues; the joined failures are returned
// alongside the partial result.
func (i *Importer) ImportDirectory(ctx context.Context, loader *Loader, dir string, opts ImportOptions) (*BatchResult, error) {
	if loader == nil {
		return nil, errors.New("markdown importer: loader is required")
	}
	files, err := loader.Discover(ctx, dir)
	if err != nil {
		return nil, err
	}
	batch := &BatchResult{Failed: map[string]error{}}
	var failures []error
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		doc, err := loader.LoadFile(ctx, file)
		if err == nil {
			var result *ImportResult
			result, err = i.Import(ctx, doc, opts)
			if err == nil {
				batch.Results = append(batch.Results, result)
				continue
			}
		}
		batch.Failed[file] = err
		failures = append(failures, fmt.Errorf("%s: %w", file, err))
	}
	return batch, errors.Join(failures...)
}
