package portfolios

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("portfolios: portfolio not found")
	ErrPersistence    = errors.New("portfolios: persistence failure")
	ErrForbidden      = errors.New("portfolios: actor does not own portfolio")
	ErrActorRequired  = errors.New("portfolios: actor is required")
	ErrOwnerRequired  = errors.New("portfolios: owner is required")
	ErrTitleRequired  = errors.New("portfolios: title is required")
	ErrSlugInvalid    = errors.New("portfolios: slug must contain letters, numbers or hyphens")
	ErrSlugExists     = errors.New("portfolios: slug already exists")
	ErrSectionUnknown = errors.New("portfolios: section is unknown")
	ErrThemeInvalid   = errors.New("portfolios: theme variant requires a theme name")
)

// PersistenceError reports a storage failure. The stored record is left as it
// was before the failed write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("portfolios: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// persistenceError classifies a repository error. Not-found and slug conflicts
// are returned as is; everything else becomes a PersistenceError.
func persistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) || errors.Is(err, ErrSlugExists) {
		return err
	}
	var persistence *PersistenceError
	if errors.As(err, &persistence) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
