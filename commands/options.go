package commands

import (
	"time"

	command "github.com/goliatone/go-command"

	internalcommands "github.com/goliatone/go-portfolio/internal/commands"
	portfoliocmd "github.com/goliatone/go-portfolio/internal/commands/portfolio"
)

func commandsTimeout[T command.Message](timeout time.Duration) internalcommands.HandlerOption[T] {
	return internalcommands.WithTimeout[T](timeout)
}

func portfolioTimeouts(timeout time.Duration) []portfoliocmd.Option {
	if timeout <= 0 {
		return nil
	}
	return []portfoliocmd.Option{
		portfoliocmd.WithReorderHandlerOptions(commandsTimeout[portfoliocmd.ReorderSectionCommand](timeout)),
		portfoliocmd.WithToggleHandlerOptions(commandsTimeout[portfoliocmd.ToggleSectionCommand](timeout)),
		portfoliocmd.WithUpdateTitleHandlerOptions(commandsTimeout[portfoliocmd.UpdateSectionTitleCommand](timeout)),
		portfoliocmd.WithPublishHandlerOptions(commandsTimeout[portfoliocmd.PublishPortfolioCommand](timeout)),
	}
}
