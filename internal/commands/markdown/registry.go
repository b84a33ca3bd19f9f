package markdowncmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-portfolio/internal/commands"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the Markdown command handlers produced by RegisterMarkdownCommands.
type HandlerSet struct {
	Import *ImportPortfoliosHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	importHandlerOpts []commands.HandlerOption[ImportPortfoliosCommand]
	reporter          Reporter
}

// WithImportHandlerOptions forwards options to the ImportPortfoliosHandler constructor.
func WithImportHandlerOptions(opts ...commands.HandlerOption[ImportPortfoliosCommand]) Option {
	return func(cfg *options) {
		cfg.importHandlerOpts = append(cfg.importHandlerOpts, opts...)
	}
}

// WithReporter receives per-run import results.
func WithReporter(reporter Reporter) Option {
	return func(cfg *options) {
		cfg.reporter = reporter
	}
}

// RegisterMarkdownCommands builds Markdown command handlers and registers them with the provided
// registry. The HandlerSet is returned so callers can wire dispatcher or cron integrations.
func RegisterMarkdownCommands(reg CommandRegistry, importer DocumentImporter, loader *markdown.Loader, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if importer == nil {
		return nil, errors.New("markdown command registration: importer is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "markdown")
	importHandler := NewImportPortfoliosHandler(importer, loader, logger, gates, cfg.reporter, cfg.importHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(importHandler); err != nil {
			return nil, err
		}
	}
	return &HandlerSet{Import: importHandler}, nil
}

// RegisterMarkdownCron schedules msg on the import handler. The handler is executed with a
// background context, which makes a directory with Overwrite set act as a periodic sync.
func RegisterMarkdownCron(reg CronRegistrar, handler *ImportPortfoliosHandler, cfg command.HandlerConfig, msg ImportPortfoliosCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
