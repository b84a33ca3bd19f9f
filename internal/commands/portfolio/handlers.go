package portfoliocmd

import (
	"context"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/commands"
	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/portfolios"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

const (
	reorderOperation     = "portfolio.sections.reorder"
	toggleOperation      = "portfolio.sections.toggle"
	updateTitleOperation = "portfolio.sections.update_title"
	publishOperation     = "portfolio.publish"
	unpublishOperation   = "portfolio.unpublish"
)

// SectionEditor is the part of the portfolio service used by the section commands.
type SectionEditor interface {
	ReorderSection(ctx context.Context, req portfolios.ReorderSectionRequest) (*portfolios.Portfolio, error)
	ToggleSection(ctx context.Context, req portfolios.ToggleSectionRequest) (*portfolios.Portfolio, error)
	UpdateSection(ctx context.Context, req portfolios.UpdateSectionRequest) (*portfolios.Portfolio, error)
}

// Publisher is the part of the portfolio service used by the publish command.
type Publisher interface {
	Publish(ctx context.Context, req portfolios.PublishRequest) (*portfolios.Portfolio, error)
	Unpublish(ctx context.Context, req portfolios.PublishRequest) (*portfolios.Portfolio, error)
}

var (
	_ command.Commander[ReorderSectionCommand]     = (*ReorderSectionHandler)(nil)
	_ command.Commander[ToggleSectionCommand]      = (*ToggleSectionHandler)(nil)
	_ command.Commander[UpdateSectionTitleCommand] = (*UpdateSectionTitleHandler)(nil)
	_ command.Commander[PublishPortfolioCommand]   = (*PublishPortfolioHandler)(nil)
)

// ReorderSectionHandler moves sections through the shared command handler.
type ReorderSectionHandler struct {
	inner *commands.Handler[ReorderSectionCommand]
}

// NewReorderSectionHandler binds the handler to editor.
func NewReorderSectionHandler(editor SectionEditor, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[ReorderSectionCommand]) *ReorderSectionHandler {
	baseLogger := ensureLogger(logger)
	exec := func(ctx context.Context, msg ReorderSectionCommand) error {
		if !gates.commandsEnabled() {
			return ErrCommandsDisabled
		}
		updated, err := editor.ReorderSection(ctx, portfolios.ReorderSectionRequest{
			ID:       msg.PortfolioID,
			ActorID:  msg.ActorID,
			Section:  msg.Section,
			NewIndex: msg.NewIndex,
		})
		if err != nil {
			return err
		}
		logging.WithPortfolio(baseLogger, msg.PortfolioID.String(), string(msg.Section)).
			Debug("portfolio.command.reorder.applied", "updated_at", updated.UpdatedAt)
		return nil
	}

	handlerOpts := []commands.HandlerOption[ReorderSectionCommand]{
		commands.WithLogger[ReorderSectionCommand](baseLogger),
		commands.WithOperation[ReorderSectionCommand](reorderOperation),
		commands.WithErrorMapper[ReorderSectionCommand](classifyError),
		commands.WithMessageFields(func(msg ReorderSectionCommand) map[string]any {
			return withActor(map[string]any{
				"portfolio_id": msg.PortfolioID,
				"section":      msg.Section,
				"new_index":    msg.NewIndex,
			}, msg.ActorID)
		}),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &ReorderSectionHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ReorderSectionCommand].
func (h *ReorderSectionHandler) Execute(ctx context.Context, msg ReorderSectionCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ToggleSectionHandler enables or disables sections.
type ToggleSectionHandler struct {
	inner *commands.Handler[ToggleSectionCommand]
}

// NewToggleSectionHandler binds the handler to editor.
func NewToggleSectionHandler(editor SectionEditor, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[ToggleSectionCommand]) *ToggleSectionHandler {
	baseLogger := ensureLogger(logger)
	exec := func(ctx context.Context, msg ToggleSectionCommand) error {
		if !gates.commandsEnabled() {
			return ErrCommandsDisabled
		}
		_, err := editor.ToggleSection(ctx, portfolios.ToggleSectionRequest{
			ID:      msg.PortfolioID,
			ActorID: msg.ActorID,
			Section: msg.Section,
			Enabled: msg.Enabled,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[ToggleSectionCommand]{
		commands.WithLogger[ToggleSectionCommand](baseLogger),
		commands.WithOperation[ToggleSectionCommand](toggleOperation),
		commands.WithErrorMapper[ToggleSectionCommand](classifyError),
		commands.WithMessageFields(func(msg ToggleSectionCommand) map[string]any {
			return withActor(map[string]any{
				"portfolio_id": msg.PortfolioID,
				"section":      msg.Section,
				"enabled":      msg.Enabled,
			}, msg.ActorID)
		}),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &ToggleSectionHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ToggleSectionCommand].
func (h *ToggleSectionHandler) Execute(ctx context.Context, msg ToggleSectionCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UpdateSectionTitleHandler edits section titles.
type UpdateSectionTitleHandler struct {
	inner *commands.Handler[UpdateSectionTitleCommand]
}

// NewUpdateSectionTitleHandler binds the handler to editor.
func NewUpdateSectionTitleHandler(editor SectionEditor, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[UpdateSectionTitleCommand]) *UpdateSectionTitleHandler {
	baseLogger := ensureLogger(logger)
	exec := func(ctx context.Context, msg UpdateSectionTitleCommand) error {
		if !gates.commandsEnabled() {
			return ErrCommandsDisabled
		}
		title := msg.Title
		_, err := editor.UpdateSection(ctx, portfolios.UpdateSectionRequest{
			ID:      msg.PortfolioID,
			ActorID: msg.ActorID,
			Section: msg.Section,
			Title:   &title,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[UpdateSectionTitleCommand]{
		commands.WithLogger[UpdateSectionTitleCommand](baseLogger),
		commands.WithOperation[UpdateSectionTitleCommand](updateTitleOperation),
		commands.WithErrorMapper[UpdateSectionTitleCommand](classifyError),
		commands.WithMessageFields(func(msg UpdateSectionTitleCommand) map[string]any {
			return withActor(map[string]any{
				"portfolio_id": msg.PortfolioID,
				"section":      msg.Section,
			}, msg.ActorID)
		}),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &UpdateSectionTitleHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[UpdateSectionTitleCommand].
func (h *UpdateSectionTitleHandler) Execute(ctx context.Context, msg UpdateSectionTitleCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PublishPortfolioHandler switches portfolios between draft and published.
type PublishPortfolioHandler struct {
	inner *commands.Handler[PublishPortfolioCommand]
}

// NewPublishPortfolioHandler binds the handler to publisher.
func NewPublishPortfolioHandler(publisher Publisher, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[PublishPortfolioCommand]) *PublishPortfolioHandler {
	baseLogger := ensureLogger(logger)
	exec := func(ctx context.Context, msg PublishPortfolioCommand) error {
		if !gates.commandsEnabled() {
			return ErrCommandsDisabled
		}
		req := portfolios.PublishRequest{ID: msg.PortfolioID, ActorID: msg.ActorID}
		var err error
		if msg.Unpublish {
			_, err = publisher.Unpublish(ctx, req)
		} else {
			_, err = publisher.Publish(ctx, req)
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[PublishPortfolioCommand]{
		commands.WithLogger[PublishPortfolioCommand](baseLogger),
		commands.WithOperation[PublishPortfolioCommand](publishOperation),
		commands.WithErrorMapper[PublishPortfolioCommand](classifyError),
		commands.WithMessageFields(func(msg PublishPortfolioCommand) map[string]any {
			fields := withActor(map[string]any{"portfolio_id": msg.PortfolioID}, msg.ActorID)
			if msg.Unpublish {
				fields["operation"] = unpublishOperation
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &PublishPortfolioHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PublishPortfolioCommand].
func (h *PublishPortfolioHandler) Execute(ctx context.Context, msg PublishPortfolioCommand) error {
	return h.inner.Execute(ctx, msg)
}

func ensureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}

func withActor(fields map[string]any, actor uuid.UUID) map[string]any {
	if actor != uuid.Nil {
		fields["actor_id"] = actor
	}
	return fields
}
