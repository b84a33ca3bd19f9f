package portfolios

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PortfolioRepository persists portfolios.
type PortfolioRepository interface {
	Create(ctx context.Context, portfolio *Portfolio) (*Portfolio, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Portfolio, error)
	GetBySlug(ctx context.Context, slug string) (*Portfolio, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Portfolio, error)
	Update(ctx context.Context, portfolio *Portfolio) (*Portfolio, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a portfolio cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ""
	}
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IsNotFound reports whether err is a not-found error from any layer.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound) || errors.Is(err, ErrNotFound)
}
