package portfoliocmd

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-portfolio/internal/permissions"
	"github.com/goliatone/go-portfolio/internal/portfolios"
	contentvalidation "github.com/goliatone/go-portfolio/internal/validation"
)

// ErrCommandsDisabled is returned when portfolio commands are switched off.
var ErrCommandsDisabled = errors.New("portfolio command: commands disabled")

// classifyError tags service errors with a go-errors category so callers can
// branch on the category instead of the concrete sentinel.
func classifyError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case portfolios.IsNotFound(err):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "portfolio not found").
			WithTextCode("PORTFOLIO_NOT_FOUND")
	case errors.Is(err, portfolios.ErrActorRequired):
		return goerrors.Wrap(err, goerrors.CategoryAuth, "actor is required").
			WithTextCode("PORTFOLIO_ACTOR_REQUIRED")
	case errors.Is(err, portfolios.ErrForbidden), errors.Is(err, permissions.ErrPermissionDenied):
		return goerrors.Wrap(err, goerrors.CategoryAuthz, "actor cannot change portfolio").
			WithTextCode("PORTFOLIO_FORBIDDEN")
	case errors.Is(err, portfolios.ErrSlugExists):
		return goerrors.Wrap(err, goerrors.CategoryConflict, "slug already exists").
			WithTextCode("PORTFOLIO_SLUG_EXISTS")
	case errors.Is(err, portfolios.ErrSectionUnknown), errors.Is(err, contentvalidation.ErrContentInvalid), errors.Is(err, contentvalidation.ErrSchemaValidation):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "portfolio input rejected").
			WithTextCode("PORTFOLIO_INVALID")
	case errors.Is(err, portfolios.ErrPersistence):
		return goerrors.Wrap(err, goerrors.CategoryExternal, "portfolio storage failed").
			WithTextCode("PORTFOLIO_PERSISTENCE_FAILED")
	case errors.Is(err, ErrCommandsDisabled):
		return goerrors.Wrap(err, goerrors.CategoryOperation, "portfolio commands disabled").
			WithTextCode("PORTFOLIO_COMMANDS_DISABLED")
	}
	return err
}
