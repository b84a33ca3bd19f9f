package markdowncmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-portfolio/internal/commands"
	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

const importOperation = "markdown.import"

var (
	// ErrMarkdownFeatureDisabled is returned when the markdown feature flag is disabled at runtime.
	ErrMarkdownFeatureDisabled = errors.New("markdown command: feature disabled")
	// ErrLoaderRequired is returned when no loader was configured.
	ErrLoaderRequired = errors.New("markdown command: loader is required")
)

var _ command.Commander[ImportPortfoliosCommand] = (*ImportPortfoliosHandler)(nil)

// DocumentImporter turns loaded documents into portfolios.
type DocumentImporter interface {
	Import(ctx context.Context, doc *markdown.Document, opts markdown.ImportOptions) (*markdown.ImportResult, error)
	ImportDirectory(ctx context.Context, loader *markdown.Loader, dir string, opts markdown.ImportOptions) (*markdown.BatchResult, error)
}

// Reporter receives the outcome of every import run, including partial
// results of runs that failed.
type Reporter func(ctx context.Context, msg ImportPortfoliosCommand, result *markdown.BatchResult)

// ImportPortfoliosHandler runs markdown imports via the shared command handler foundation.
type ImportPortfoliosHandler struct {
	inner *commands.Handler[ImportPortfoliosCommand]
}

// NewImportPortfoliosHandler creates a handler reading documents through loader.
func NewImportPortfoliosHandler(importer DocumentImporter, loader *markdown.Loader, logger interfaces.Logger, gates FeatureGates, reporter Reporter, opts ...commands.HandlerOption[ImportPortfoliosCommand]) *ImportPortfoliosHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ImportPortfoliosCommand) error {
		if !gates.markdownEnabled() {
			return ErrMarkdownFeatureDisabled
		}
		if loader == nil {
			return ErrLoaderRequired
		}

		importOpts := markdown.ImportOptions{
			OwnerID:   msg.OwnerID,
			Overwrite: msg.Overwrite,
			DryRun:    msg.DryRun,
		}
		batch, err := runImport(ctx, importer, loader, msg, importOpts)
		if reporter != nil && batch != nil {
			reporter(ctx, msg, batch)
		}
		if batch != nil {
			created, updated, skipped := batch.Counts()
			logging.WithFields(baseLogger, map[string]any{
				"created_count": created,
				"updated_count": updated,
				"skipped_count": skipped,
				"error_count":   len(batch.Failed),
				"dry_run":       msg.DryRun,
			}).Info("markdown.command.import.completed")
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[ImportPortfoliosCommand]{
		commands.WithLogger[ImportPortfoliosCommand](baseLogger),
		commands.WithOperation[ImportPortfoliosCommand](importOperation),
		commands.WithMessageFields(func(msg ImportPortfoliosCommand) map[string]any {
			fields := map[string]any{
				"path":     msg.Path,
				"owner_id": msg.OwnerID,
			}
			if msg.Overwrite {
				fields["overwrite"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportPortfoliosHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ImportPortfoliosCommand].
func (h *ImportPortfoliosHandler) Execute(ctx context.Context, msg ImportPortfoliosCommand) error {
	return h.inner.Execute(ctx, msg)
}

func runImport(ctx context.Context, importer DocumentImporter, loader *markdown.Loader, msg ImportPortfoliosCommand, opts markdown.ImportOptions) (*markdown.BatchResult, error) {
	if !msg.IsFile() {
		return importer.ImportDirectory(ctx, loader, msg.Path, opts)
	}
	batch := &markdown.BatchResult{Failed: map[string]error{}}
	doc, err := loader.LoadFile(ctx, msg.Path)
	if err == nil {
		var result *markdown.ImportResult
		if result, err = importer.Import(ctx, doc, opts); err == nil {
			batch.Results = append(batch.Results, result)
			return batch, nil
		}
	}
	batch.Failed[msg.Path] = err
	return batch, err
}
