package portfoliocmd

import (
	"errors"

	"github.com/goliatone/go-portfolio/internal/commands"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Service is the portfolio service surface the commands need.
type Service interface {
	SectionEditor
	Publisher
}

// HandlerSet groups the handlers built by RegisterPortfolioCommands.
type HandlerSet struct {
	Reorder     *ReorderSectionHandler
	Toggle      *ToggleSectionHandler
	UpdateTitle *UpdateSectionTitleHandler
	Publish     *PublishPortfolioHandler
}

// Handlers lists the handlers in registration order.
func (s *HandlerSet) Handlers() []any {
	if s == nil {
		return nil
	}
	return []any{s.Reorder, s.Toggle, s.UpdateTitle, s.Publish}
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	reorderOpts []commands.HandlerOption[ReorderSectionCommand]
	toggleOpts  []commands.HandlerOption[ToggleSectionCommand]
	titleOpts   []commands.HandlerOption[UpdateSectionTitleCommand]
	publishOpts []commands.HandlerOption[PublishPortfolioCommand]
}

func WithReorderHandlerOptions(opts ...commands.HandlerOption[ReorderSectionCommand]) Option {
	return func(cfg *options) { cfg.reorderOpts = append(cfg.reorderOpts, opts...) }
}

func WithToggleHandlerOptions(opts ...commands.HandlerOption[ToggleSectionCommand]) Option {
	return func(cfg *options) { cfg.toggleOpts = append(cfg.toggleOpts, opts...) }
}

func WithUpdateTitleHandlerOptions(opts ...commands.HandlerOption[UpdateSectionTitleCommand]) Option {
	return func(cfg *options) { cfg.titleOpts = append(cfg.titleOpts, opts...) }
}

func WithPublishHandlerOptions(opts ...commands.HandlerOption[PublishPortfolioCommand]) Option {
	return func(cfg *options) { cfg.publishOpts = append(cfg.publishOpts, opts...) }
}

// RegisterPortfolioCommands builds the section and publish handlers and
// registers them with reg when it is non-nil.
func RegisterPortfolioCommands(reg CommandRegistry, service Service, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("portfolio command registration: service is nil")
	}
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "portfolio")
	set := &HandlerSet{
		Reorder:     NewReorderSectionHandler(service, logger, gates, cfg.reorderOpts...),
		Toggle:      NewToggleSectionHandler(service, logger, gates, cfg.toggleOpts...),
		UpdateTitle: NewUpdateSectionTitleHandler(service, logger, gates, cfg.titleOpts...),
		Publish:     NewPublishPortfolioHandler(service, logger, gates, cfg.publishOpts...),
	}
	if reg != nil {
		for _, handler := range set.Handlers() {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
