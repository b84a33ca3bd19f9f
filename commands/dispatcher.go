package commands

import (
	"fmt"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	markdowncmd "github.com/goliatone/go-portfolio/internal/commands/markdown"
	portfoliocmd "github.com/goliatone/go-portfolio/internal/commands/portfolio"
)

// GoCommandDispatcher subscribes portfolio handlers to the go-command dispatcher.
type GoCommandDispatcher struct {
	options []runner.Option
}

var _ CommandDispatcher = (*GoCommandDispatcher)(nil)

// NewGoCommandDispatcher retries failed executions up to maxRetries times.
func NewGoCommandDispatcher(maxRetries int) *GoCommandDispatcher {
	var opts []runner.Option
	if maxRetries > 0 {
		opts = append(opts, runner.WithMaxRetries(maxRetries))
	}
	return &GoCommandDispatcher{options: opts}
}

// RegisterCommand subscribes handler for its message type.
func (d *GoCommandDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case *portfoliocmd.ReorderSectionHandler:
		return dispatcher.SubscribeCommand[portfoliocmd.ReorderSectionCommand](h, d.options...), nil
	case *portfoliocmd.ToggleSectionHandler:
		return dispatcher.SubscribeCommand[portfoliocmd.ToggleSectionCommand](h, d.options...), nil
	case *portfoliocmd.UpdateSectionTitleHandler:
		return dispatcher.SubscribeCommand[portfoliocmd.UpdateSectionTitleCommand](h, d.options...), nil
	case *portfoliocmd.PublishPortfolioHandler:
		return dispatcher.SubscribeCommand[portfoliocmd.PublishPortfolioCommand](h, d.options...), nil
	case *markdowncmd.ImportPortfoliosHandler:
		return dispatcher.SubscribeCommand[markdowncmd.ImportPortfoliosCommand](h, d.options...), nil
	default:
		return nil, fmt.Errorf("commands: unsupported handler %T", handler)
	}
}
