package portfoliocmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/sections"
)

const (
	reorderSectionMessageType     = "portfolio.sections.reorder"
	toggleSectionMessageType      = "portfolio.sections.toggle"
	updateSectionTitleMessageType = "portfolio.sections.update_title"
	publishPortfolioMessageType   = "portfolio.publish"

	maxSectionTitleLength = 120
)

// ReorderSectionCommand moves one section to a new position in the page order.
type ReorderSectionCommand struct {
	PortfolioID uuid.UUID   `json:"portfolio_id"`
	Section     sections.ID `json:"section"`
	NewIndex    int         `json:"new_index"`
	ActorID     uuid.UUID   `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (ReorderSectionCommand) Type() string { return reorderSectionMessageType }

// Validate ensures the target is addressable. Out of range indexes are left to
// the service, which treats them as a no-op.
func (m ReorderSectionCommand) Validate() error {
	errs := validation.Errors{}
	if m.PortfolioID == uuid.Nil {
		errs["portfolio_id"] = validation.NewError("portfolio.sections.reorder.portfolio_id_required", "portfolio id is required")
	}
	if m.Section == "" {
		errs["section"] = validation.NewError("portfolio.sections.reorder.section_required", "section is required")
	}
	if m.NewIndex < 0 {
		errs["new_index"] = validation.NewError("portfolio.sections.reorder.index_negative", "new index cannot be negative")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToggleSectionCommand enables or disables a section.
type ToggleSectionCommand struct {
	PortfolioID uuid.UUID   `json:"portfolio_id"`
	Section     sections.ID `json:"section"`
	Enabled     bool        `json:"enabled"`
	ActorID     uuid.UUID   `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (ToggleSectionCommand) Type() string { return toggleSectionMessageType }

// Validate implements command.Message.
func (m ToggleSectionCommand) Validate() error {
	errs := validation.Errors{}
	if m.PortfolioID == uuid.Nil {
		errs["portfolio_id"] = validation.NewError("portfolio.sections.toggle.portfolio_id_required", "portfolio id is required")
	}
	if m.Section == "" {
		errs["section"] = validation.NewError("portfolio.sections.toggle.section_required", "section is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateSectionTitleCommand sets the display title of a section. A blank
// title clears the override so the registry default applies again.
type UpdateSectionTitleCommand struct {
	PortfolioID uuid.UUID   `json:"portfolio_id"`
	Section     sections.ID `json:"section"`
	Title       string      `json:"title"`
	ActorID     uuid.UUID   `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (UpdateSectionTitleCommand) Type() string { return updateSectionTitleMessageType }

// Validate implements command.Message.
func (m UpdateSectionTitleCommand) Validate() error {
	errs := validation.Errors{}
	if m.PortfolioID == uuid.Nil {
		errs["portfolio_id"] = validation.NewError("portfolio.sections.update_title.portfolio_id_required", "portfolio id is required")
	}
	if m.Section == "" {
		errs["section"] = validation.NewError("portfolio.sections.update_title.section_required", "section is required")
	}
	if err := validation.Validate(m.Title, validation.RuneLength(0, maxSectionTitleLength)); err != nil {
		errs["title"] = validation.NewError("portfolio.sections.update_title.title_too_long", "title must be at most 120 characters")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PublishPortfolioCommand publishes or unpublishes a portfolio.
type PublishPortfolioCommand struct {
	PortfolioID uuid.UUID `json:"portfolio_id"`
	ActorID     uuid.UUID `json:"actor_id,omitempty"`
	Unpublish   bool      `json:"unpublish,omitempty"`
}

// Type implements command.Message.
func (PublishPortfolioCommand) Type() string { return publishPortfolioMessageType }

// Validate implements command.Message.
func (m PublishPortfolioCommand) Validate() error {
	if m.PortfolioID == uuid.Nil {
		return validation.Errors{
			"portfolio_id": validation.NewError("portfolio.publish.portfolio_id_required", "portfolio id is required"),
		}
	}
	return nil
}
