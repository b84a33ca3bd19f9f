package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	portfolio "github.com/goliatone/go-portfolio"
	"github.com/goliatone/go-portfolio/internal/auth"
)

func useMemoryModule(t *testing.T) **portfolio.Module {
	t.Helper()
	var built *portfolio.Module
	original := moduleBuilder
	moduleBuilder = func(cfg portfolio.Config) (*portfolio.Module, error) {
		cfg.Storage.Driver = "memory"
		cfg.Logging.Provider = "none"
		module, err := portfolio.New(cfg)
		built = module
		return module, err
	}
	t.Cleanup(func() { moduleBuilder = original })
	return &built
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	original := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = original })
	return &buf
}

func TestRunImportCreatesPortfolio(t *testing.T) {
	built := useMemoryModule(t)
	out := captureStdout(t)

	err := run([]string{
		"import",
		"-content-dir", "../../internal/markdown/testdata",
		"-path", "band.md",
		"-owner", uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out.String(), "created") || !strings.Contains(out.String(), "created=1") {
		t.Fatalf("unexpected report %q", out.String())
	}

	module := *built
	if module == nil {
		t.Fatal("expected module to be built")
	}
	record, err := module.Portfolios().GetBySlug(context.Background(), "night-owls")
	if err != nil {
		t.Fatalf("get imported portfolio: %v", err)
	}
	if !record.IsPublished() {
		t.Fatal("front matter asked for a published portfolio")
	}
}

func TestRunImportDirectoryReportsFailures(t *testing.T) {
	useMemoryModule(t)
	out := captureStdout(t)

	err := run([]string{
		"import",
		"-content-dir", "../../internal/markdown/testdata",
		"-path", "batch",
		"-owner", uuid.NewString(),
	})
	if err == nil {
		t.Fatal("expected the broken document to fail the run")
	}
	report := out.String()
	if !strings.Contains(report, "failed") || !strings.Contains(report, "created=1") {
		t.Fatalf("expected partial report, got %q", report)
	}
}

func TestRunImportRequiresOwner(t *testing.T) {
	useMemoryModule(t)
	if err := run([]string{"import", "-path", "band.md"}); err == nil {
		t.Fatal("expected owner parse error")
	}
}

func TestRunTokenIssuesVerifiableToken(t *testing.T) {
	t.Setenv("PORTFOLIO_JWT_SECRET", "cli-secret")
	t.Setenv("PORTFOLIO_DB_DRIVER", "memory")
	out := captureStdout(t)
	actor := uuid.New()

	if err := run([]string{"token", "-actor", actor.String(), "-perms", "portfolios.read, portfolios.write"}); err != nil {
		t.Fatalf("token: %v", err)
	}

	authenticator, err := auth.New(auth.Config{Secret: "cli-secret", Issuer: "go-portfolio", TTL: time.Hour})
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	claims, err := authenticator.Parse(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	subject, err := claims.Actor()
	if err != nil || subject != actor {
		t.Fatalf("unexpected subject %v (%v)", subject, err)
	}
	if grants := claims.Grants(); len(grants) != 2 {
		t.Fatalf("expected two grants, got %v", grants)
	}
}

func TestRunRejectsUnknownSubcommand(t *testing.T) {
	if err := run([]string{"serve"}); err == nil {
		t.Fatal("expected unknown subcommand error")
	}
	if err := run(nil); err == nil {
		t.Fatal("expected usage error")
	}
}
