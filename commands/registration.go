package commands

import (
	"errors"
	"strings"

	command "github.com/goliatone/go-command"

	markdowncmd "github.com/goliatone/go-portfolio/internal/commands/markdown"
	portfoliocmd "github.com/goliatone/go-portfolio/internal/commands/portfolio"
	"github.com/goliatone/go-portfolio/internal/di"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar registers command handlers with a cron scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	CronRegistrar  CronRegistrar
	LoggerProvider interfaces.LoggerProvider
	// MarkdownLoader enables the markdown import handler. Without it only the
	// portfolio handlers are built.
	MarkdownLoader *markdown.Loader
	// MarkdownReporter receives per-run import results.
	MarkdownReporter markdowncmd.Reporter
	// MarkdownSyncCron schedules MarkdownSync when both are set.
	MarkdownSyncCron string
	MarkdownSync     markdowncmd.ImportPortfoliosCommand
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
	Portfolio     *portfoliocmd.HandlerSet
	Markdown      *markdowncmd.HandlerSet
}

// Unsubscribe tears down every dispatcher subscription.
func (r *RegistrationResult) Unsubscribe() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
	r.Subscriptions = nil
}

// RegisterContainerCommands builds the command handlers exposed by the provided container and
// optionally registers them with registry/dispatcher/cron integrations.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil {
		return &RegistrationResult{}, nil
	}

	cfg := container.Config

	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}

	result := &RegistrationResult{
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}
	if !cfg.Commands.Enabled {
		return result, nil
	}

	var errs error

	register := func(handler any) {
		if handler == nil {
			return
		}
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}

	enabled := func() bool { return cfg.Commands.Enabled }

	// Portfolio commands.
	if service := container.PortfolioService(); service != nil {
		set, err := portfoliocmd.RegisterPortfolioCommands(nil, service, provider, portfoliocmd.FeatureGates{
			CommandsEnabled: enabled,
		}, portfolioTimeouts(cfg.Commands.Timeout)...)
		if err != nil {
			errs = errors.Join(errs, err)
		} else {
			result.Portfolio = set
			for _, handler := range set.Handlers() {
				register(handler)
			}
		}
	}

	// Markdown commands.
	if importer := container.MarkdownImporter(); importer != nil && opts.MarkdownLoader != nil {
		markdownOpts := []markdowncmd.Option{markdowncmd.WithReporter(opts.MarkdownReporter)}
		if cfg.Commands.Timeout > 0 {
			markdownOpts = append(markdownOpts, markdowncmd.WithImportHandlerOptions(
				commandsTimeout[markdowncmd.ImportPortfoliosCommand](cfg.Commands.Timeout)))
		}
		set, err := markdowncmd.RegisterMarkdownCommands(nil, importer, opts.MarkdownLoader, provider, markdowncmd.FeatureGates{
			MarkdownEnabled: enabled,
		}, markdownOpts...)
		if err != nil {
			errs = errors.Join(errs, err)
		} else {
			result.Markdown = set
			register(set.Import)

			expr := strings.TrimSpace(opts.MarkdownSyncCron)
			if opts.CronRegistrar != nil && expr != "" {
				if err := markdowncmd.RegisterMarkdownCron(
					markdowncmd.CronRegistrar(opts.CronRegistrar),
					set.Import,
					command.HandlerConfig{Expression: expr},
					opts.MarkdownSync,
				); err != nil {
					errs = errors.Join(errs, err)
				}
			}
		}
	}

	if errs != nil && len(result.Handlers) == 0 {
		return result, errs
	}

	if len(result.Handlers) == 0 {
		return result, errors.New("no command handlers registered; ensure the portfolio service is configured")
	}

	return result, errs
}
