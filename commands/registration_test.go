package commands

import (
	"context"
	"errors"
	"os"
	"testing"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/google/uuid"

	markdowncmd "github.com/goliatone/go-portfolio/internal/commands/markdown"
	portfoliocmd "github.com/goliatone/go-portfolio/internal/commands/portfolio"
	"github.com/goliatone/go-portfolio/internal/di"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/portfolios"
	"github.com/goliatone/go-portfolio/internal/runtimeconfig"
)

func testContainer(t *testing.T, mutate func(*runtimeconfig.Config)) *di.Container {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "memory"
	cfg.Logging.Provider = "none"
	if mutate != nil {
		mutate(&cfg)
	}
	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	return container
}

func TestRegisterContainerCommandsBuildsHandlers(t *testing.T) {
	registry := &recordingRegistry{}
	bus := &recordingDispatcher{}
	cron := &recordingCron{}

	container := testContainer(t, nil)
	loader := markdown.NewLoader(os.DirFS("../internal/markdown/testdata"), markdown.LoaderConfig{})

	result, err := RegisterContainerCommands(container, RegistrationOptions{
		Registry:         registry,
		Dispatcher:       bus,
		CronRegistrar:    cron.Registrar(),
		MarkdownLoader:   loader,
		MarkdownSyncCron: "@hourly",
		MarkdownSync: markdowncmd.ImportPortfoliosCommand{
			Path:      "band.md",
			OwnerID:   uuid.New(),
			Overwrite: true,
		},
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}

	if len(result.Handlers) != 5 {
		t.Fatalf("expected portfolio and markdown handlers, got %d", len(result.Handlers))
	}
	if len(registry.handlers) != len(result.Handlers) {
		t.Fatalf("expected registry to record all handlers, got %d of %d", len(registry.handlers), len(result.Handlers))
	}
	if len(bus.subscriptions) != len(result.Handlers) {
		t.Fatal("expected dispatcher subscriptions when dispatcher provided")
	}
	if len(cron.registrations) != 1 || cron.registrations[0].config.Expression != "@hourly" {
		t.Fatalf("expected markdown sync cron registration, got %+v", cron.registrations)
	}

	if err := cron.registrations[0].handler(); err != nil {
		t.Fatalf("cron run: %v", err)
	}
	if _, err := container.PortfolioService().GetPublished(context.Background(), "night-owls"); err != nil {
		t.Fatalf("expected cron import to publish the portfolio, got %v", err)
	}

	result.Unsubscribe()
	if bus.unsubscribed != len(result.Handlers) {
		t.Fatalf("expected every subscription torn down, got %d", bus.unsubscribed)
	}
}

func TestRegisterContainerCommandsWithoutRegistrars(t *testing.T) {
	result, err := RegisterContainerCommands(testContainer(t, nil), RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) != 4 || result.Markdown != nil {
		t.Fatalf("expected only portfolio handlers without a loader, got %d", len(result.Handlers))
	}
	if len(result.Subscriptions) != 0 {
		t.Fatalf("expected no dispatcher subscriptions without dispatcher, got %d", len(result.Subscriptions))
	}
}

func TestRegisterContainerCommandsDisabled(t *testing.T) {
	container := testContainer(t, func(cfg *runtimeconfig.Config) { cfg.Commands.Enabled = false })
	result, err := RegisterContainerCommands(container, RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) != 0 {
		t.Fatalf("expected no handlers when commands are disabled, got %d", len(result.Handlers))
	}
}

func TestGoCommandDispatcherRoutesMessages(t *testing.T) {
	container := testContainer(t, nil)
	svc := container.PortfolioService()
	owner := uuid.New()
	record, err := svc.Create(context.Background(), portfolios.CreateRequest{OwnerID: owner, Title: "Dispatch Test"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := RegisterContainerCommands(container, RegistrationOptions{
		Dispatcher: NewGoCommandDispatcher(0),
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	t.Cleanup(result.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), portfoliocmd.PublishPortfolioCommand{
		PortfolioID: record.ID,
		ActorID:     owner,
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := svc.GetPublished(context.Background(), record.Slug); err != nil {
		t.Fatalf("expected published portfolio, got %v", err)
	}

	if _, err := NewGoCommandDispatcher(0).RegisterCommand(struct{}{}); err == nil {
		t.Fatal("expected unsupported handler error")
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

type recordingDispatcher struct {
	subscriptions []any
	unsubscribed  int
	err           error
}

func (d *recordingDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.subscriptions = append(d.subscriptions, handler)
	return subscriptionFunc(func() { d.unsubscribed++ }), nil
}

type subscriptionFunc func()

func (f subscriptionFunc) Unsubscribe() { f() }

type cronRegistration struct {
	config  command.HandlerConfig
	handler func() error
}

type recordingCron struct {
	registrations []cronRegistration
	err           error
}

func (c *recordingCron) Registrar() CronRegistrar {
	return func(cfg command.HandlerConfig, handler any) error {
		if c.err != nil {
			return c.err
		}
		var fn func() error
		if h, ok := handler.(func() error); ok {
			fn = h
		}
		c.registrations = append(c.registrations, cronRegistration{
			config:  cfg,
			handler: fn,
		})
		return nil
	}
}

func TestRegisterContainerCommandsSurfacesDispatcherErrors(t *testing.T) {
	bus := &recordingDispatcher{err: errors.New("bus closed")}
	result, err := RegisterContainerCommands(testContainer(t, nil), RegistrationOptions{Dispatcher: bus})
	if err == nil {
		t.Fatal("expected dispatcher error")
	}
	if len(result.Handlers) != 4 {
		t.Fatalf("handlers are still built when subscription fails, got %d", len(result.Handlers))
	}
}
