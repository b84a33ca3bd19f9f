package portfoliocmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/portfolios"
	"github.com/goliatone/go-portfolio/internal/sections"
)

type recordingRegistry struct {
	handlers []any
	err      error
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	if r.err != nil {
		return r.err
	}
	r.handlers = append(r.handlers, handler)
	return nil
}

func newServiceWithPortfolio(t *testing.T) (portfolios.Service, *portfolios.Portfolio) {
	t.Helper()
	svc := portfolios.NewService(portfolios.NewMemoryPortfolioRepository())
	record, err := svc.Create(context.Background(), portfolios.CreateRequest{OwnerID: uuid.New(), Title: "Night Owls"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return svc, record
}

func resolvedIndex(svc portfolios.Service, p *portfolios.Portfolio, id sections.ID) (int, sections.Resolved) {
	for i, section := range svc.ResolveAll(p) {
		if section.ID == id {
			return i, section
		}
	}
	return -1, sections.Resolved{}
}

func TestRegisterPortfolioCommands(t *testing.T) {
	svc, _ := newServiceWithPortfolio(t)
	reg := &recordingRegistry{}
	set, err := RegisterPortfolioCommands(reg, svc, nil, FeatureGates{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(reg.handlers) != 4 || set.Publish == nil {
		t.Fatalf("expected four registered handlers, got %d", len(reg.handlers))
	}

	if _, err := RegisterPortfolioCommands(reg, nil, nil, FeatureGates{}); err == nil {
		t.Fatal("expected nil service error")
	}
	failing := &recordingRegistry{err: errors.New("registry closed")}
	if _, err := RegisterPortfolioCommands(failing, svc, nil, FeatureGates{}); err == nil {
		t.Fatal("expected registry error")
	}
}

func TestReorderSectionHandlerMovesSection(t *testing.T) {
	ctx := context.Background()
	svc, record := newServiceWithPortfolio(t)
	handler := NewReorderSectionHandler(svc, nil, FeatureGates{})

	if err := handler.Execute(ctx, ReorderSectionCommand{PortfolioID: record.ID, Section: sections.Contact, NewIndex: 0}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	stored, err := svc.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if idx, _ := resolvedIndex(svc, stored, sections.Contact); idx != 0 {
		t.Fatalf("expected contact first, got index %d", idx)
	}
}

func TestToggleAndTitleHandlers(t *testing.T) {
	ctx := context.Background()
	svc, record := newServiceWithPortfolio(t)

	toggle := NewToggleSectionHandler(svc, nil, FeatureGates{})
	if err := toggle.Execute(ctx, ToggleSectionCommand{PortfolioID: record.ID, Section: sections.Press, Enabled: false}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	title := NewUpdateSectionTitleHandler(svc, nil, FeatureGates{})
	if err := title.Execute(ctx, UpdateSectionTitleCommand{PortfolioID: record.ID, Section: sections.About, Title: "The Band"}); err != nil {
		t.Fatalf("title: %v", err)
	}

	stored, err := svc.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, press := resolvedIndex(svc, stored, sections.Press); press.Enabled {
		t.Fatal("expected press disabled")
	}
	if _, about := resolvedIndex(svc, stored, sections.About); about.Title != "The Band" {
		t.Fatalf("expected title override, got %q", about.Title)
	}

	err = title.Execute(ctx, UpdateSectionTitleCommand{PortfolioID: record.ID, Section: "guestbook", Title: "x"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category for unknown section, got %v", err)
	}
	if !errors.Is(err, portfolios.ErrSectionUnknown) {
		t.Fatalf("expected unknown section sentinel, got %v", err)
	}
}

func TestPublishPortfolioHandler(t *testing.T) {
	ctx := context.Background()
	svc, record := newServiceWithPortfolio(t)
	handler := NewPublishPortfolioHandler(svc, nil, FeatureGates{})

	if err := handler.Execute(ctx, PublishPortfolioCommand{PortfolioID: record.ID}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := svc.GetPublished(ctx, record.Slug); err != nil {
		t.Fatalf("expected published portfolio, got %v", err)
	}

	if err := handler.Execute(ctx, PublishPortfolioCommand{PortfolioID: record.ID, Unpublish: true}); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if _, err := svc.GetPublished(ctx, record.Slug); !portfolios.IsNotFound(err) {
		t.Fatalf("expected draft to be hidden, got %v", err)
	}

	err := handler.Execute(ctx, PublishPortfolioCommand{PortfolioID: uuid.New()})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
}

func TestHandlersRejectInvalidMessages(t *testing.T) {
	svc, _ := newServiceWithPortfolio(t)
	handler := NewReorderSectionHandler(svc, nil, FeatureGates{})

	err := handler.Execute(context.Background(), ReorderSectionCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestHandlersHonourFeatureGate(t *testing.T) {
	svc, record := newServiceWithPortfolio(t)
	gates := FeatureGates{CommandsEnabled: func() bool { return false }}
	handler := NewToggleSectionHandler(svc, nil, gates)

	err := handler.Execute(context.Background(), ToggleSectionCommand{PortfolioID: record.ID, Section: sections.Press})
	if !errors.Is(err, ErrCommandsDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
	stored, _ := svc.Get(context.Background(), record.ID)
	if _, press := resolvedIndex(svc, stored, sections.Press); !press.Enabled {
		t.Fatal("disabled commands must not write")
	}
}
