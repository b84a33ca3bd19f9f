package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	portfolio "github.com/goliatone/go-portfolio"
	markdowncmd "github.com/goliatone/go-portfolio/internal/commands/markdown"
	"github.com/goliatone/go-portfolio/internal/auth"
	"github.com/goliatone/go-portfolio/internal/markdown"
)

// moduleBuilder is swapped in tests to avoid opening a real database.
var moduleBuilder = buildModule

var stdout io.Writer = os.Stdout

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("portfolioctl: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: portfolioctl <import|token> [flags]")
	}
	switch args[0] {
	case "import":
		return runImport(args[1:])
	case "token":
		return runToken(args[1:])
	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func buildModule(cfg portfolio.Config) (*portfolio.Module, error) {
	module, err := portfolio.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open module: %w", err)
	}
	if _, err := module.Migrate(context.Background()); err != nil {
		_ = module.Close(context.Background())
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return module, nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("portfolioctl-import", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to the YAML configuration file")
	contentDir := fs.String("content-dir", "content", "Path to the markdown content root")
	pattern := fs.String("pattern", "*.md", "Glob pattern applied when discovering markdown files")
	path := fs.String("path", ".", "File or directory to import, relative to the content root")
	owner := fs.String("owner", "", "Owner ID recorded on imported portfolios")
	overwrite := fs.Bool("overwrite", false, "Replace portfolios whose slug already exists")
	dryRun := fs.Bool("dry-run", false, "Preview changes without persisting portfolios")

	if err := fs.Parse(args); err != nil {
		return err
	}

	ownerID, err := uuid.Parse(strings.TrimSpace(*owner))
	if err != nil {
		return fmt.Errorf("parse owner: %w", err)
	}

	cfg, err := portfolio.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	module, err := moduleBuilder(cfg)
	if err != nil {
		return err
	}
	defer module.Close(context.Background())

	loader := markdown.NewLoader(os.DirFS(*contentDir), markdown.LoaderConfig{Pattern: *pattern, Recursive: true})
	handler := markdowncmd.NewImportPortfoliosHandler(
		module.Importer(),
		loader,
		module.Container().Logger("markdown"),
		markdowncmd.FeatureGates{MarkdownEnabled: func() bool { return true }},
		printReport,
	)
	cmd := markdowncmd.ImportPortfoliosCommand{
		Path:      *path,
		OwnerID:   ownerID,
		Overwrite: *overwrite,
		DryRun:    *dryRun,
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute import command: %w", err)
	}
	return nil
}

func printReport(_ context.Context, msg markdowncmd.ImportPortfoliosCommand, result *markdown.BatchResult) {
	if result == nil {
		return
	}
	for _, item := range result.Results {
		state := "skipped"
		switch {
		case item.Created:
			state = "created"
		case item.Updated:
			state = "updated"
		}
		if item.Published {
			state += "+published"
		}
		fmt.Fprintf(stdout, "%-18s %s (%s)\n", state, item.Slug, item.Path)
	}
	for file, err := range result.Failed {
		fmt.Fprintf(stdout, "%-18s %s: %v\n", "failed", file, err)
	}
	created, updated, skipped := result.Counts()
	suffix := ""
	if msg.DryRun {
		suffix = " (dry run)"
	}
	fmt.Fprintf(stdout, "created=%d updated=%d skipped=%d failed=%d%s\n", created, updated, skipped, len(result.Failed), suffix)
}

func runToken(args []string) error {
	fs := flag.NewFlagSet("portfolioctl-token", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to the YAML configuration file")
	actor := fs.String("actor", "", "Actor ID carried in the token subject")
	ttl := fs.Duration("ttl", 0, "Token lifetime; defaults to the configured auth token TTL")
	perms := fs.String("perms", "", "Comma separated permissions granted to the token")

	if err := fs.Parse(args); err != nil {
		return err
	}

	actorID, err := uuid.Parse(strings.TrimSpace(*actor))
	if err != nil {
		return fmt.Errorf("parse actor: %w", err)
	}
	cfg, err := portfolio.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	lifetime := cfg.Auth.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}
	authenticator, err := auth.New(auth.Config{
		Secret:   cfg.Auth.Secret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      lifetime,
	})
	if err != nil {
		return err
	}
	token, err := authenticator.Issue(actorID, splitList(*perms)...)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
