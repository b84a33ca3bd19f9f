package markdowncmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const importPortfoliosMessageType = "portfolio.markdown.import"

// ImportPortfoliosCommand imports portfolio documents. Path names either a
// single markdown file or a directory walked by the loader.
type ImportPortfoliosCommand struct {
	// Path selects the file or directory, relative to the loader root.
	Path string `json:"path"`
	// OwnerID owns created portfolios and authorises updates.
	OwnerID uuid.UUID `json:"owner_id"`
	// Overwrite replaces portfolios whose slug already exists.
	Overwrite bool `json:"overwrite,omitempty"`
	// DryRun reports what would change without writing.
	DryRun bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (ImportPortfoliosCommand) Type() string { return importPortfoliosMessageType }

// Validate ensures path and owner are present before handlers execute.
func (cmd ImportPortfoliosCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(cmd.Path) == "" {
		errs["path"] = validation.NewError("portfolio.markdown.import.path_required", "path is required")
	}
	if cmd.OwnerID == uuid.Nil {
		errs["owner_id"] = validation.NewError("portfolio.markdown.import.owner_required", "owner id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsFile reports whether Path names a single document.
func (cmd ImportPortfoliosCommand) IsFile() bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(cmd.Path)), ".md")
}
