package permissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionPublish Action = "publish"
	// ActionManage grants access to portfolios owned by other users.
	ActionManage Action = "manage"
)

const ResourcePortfolios = "portfolios"

var (
	PortfoliosRead    = Join(ResourcePortfolios, ActionRead)
	PortfoliosCreate  = Join(ResourcePortfolios, ActionCreate)
	PortfoliosUpdate  = Join(ResourcePortfolios, ActionUpdate)
	PortfoliosDelete  = Join(ResourcePortfolios, ActionDelete)
	PortfoliosPublish = Join(ResourcePortfolios, ActionPublish)
	PortfoliosManage  = Join(ResourcePortfolios, ActionManage)
)

// OwnerDefaults is granted to any authenticated user without explicit claims.
func OwnerDefaults() []string {
	return []string{PortfoliosRead, PortfoliosCreate, PortfoliosUpdate, PortfoliosDelete, PortfoliosPublish}
}

var (
	ErrPermissionDenied = errors.New("permissions: denied")
	// ErrNotOwner is returned when the actor neither owns the portfolio nor
	// holds PortfoliosManage.
	ErrNotOwner = fmt.Errorf("%w: actor does not own the portfolio", ErrPermissionDenied)
)

// DeniedError names the grant a checker refused.
type DeniedError struct {
	Permission string
	Actor      uuid.UUID
}

func (e DeniedError) Error() string {
	if e.Actor == uuid.Nil {
		return "permission denied: " + e.Permission
	}
	return fmt.Sprintf("permission denied: %s for actor %s", e.Permission, e.Actor)
}

func (e DeniedError) Unwrap() error {
	return ErrPermissionDenied
}

// Join builds a "resource:action" token.
func Join(resource string, action Action) string {
	res := normalize(resource)
	act := normalize(string(action))
	if res == "" || act == "" {
		return ""
	}
	return res + ":" + act
}

type Checker interface {
	Allowed(permission string) bool
}

// Set is a static checker. "resource:*" and "*" act as wildcards.
type Set map[string]struct{}

func NewSet(perms ...string) Set {
	set := Set{}
	for _, perm := range perms {
		if normalized := normalize(perm); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

func (s Set) Allowed(permission string) bool {
	normalized := normalize(permission)
	if len(s) == 0 || normalized == "" {
		return false
	}
	if _, ok := s[normalized]; ok {
		return true
	}
	if resource, _, found := strings.Cut(normalized, ":"); found {
		if _, ok := s[resource+":*"]; ok {
			return true
		}
	}
	_, ok := s["*"]
	return ok
}

type contextKey string

const (
	checkerKey contextKey = "portfolio.permissions.checker"
	actorKey   contextKey = "portfolio.permissions.actor"
)

// WithChecker stores checker on the context.
func WithChecker(ctx context.Context, checker Checker) context.Context {
	if ctx == nil || checker == nil {
		return ctx
	}
	return context.WithValue(ctx, checkerKey, checker)
}

// WithPermissions stores a static permission set on the context.
func WithPermissions(ctx context.Context, perms ...string) context.Context {
	if ctx == nil || len(perms) == 0 {
		return ctx
	}
	return WithChecker(ctx, NewSet(perms...))
}

// CheckerFromContext returns the stored checker, or nil.
func CheckerFromContext(ctx context.Context) Checker {
	if ctx == nil {
		return nil
	}
	checker, _ := ctx.Value(checkerKey).(Checker)
	return checker
}

// WithActor stores the acting user on the context.
func WithActor(ctx context.Context, actor uuid.UUID) context.Context {
	if ctx == nil || actor == uuid.Nil {
		return ctx
	}
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the acting user, if any.
func ActorFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	actor, ok := ctx.Value(actorKey).(uuid.UUID)
	return actor, ok && actor != uuid.Nil
}

// Allowed reports whether permission is granted. Contexts without a checker
// are trusted; that is how internal callers such as the CLI run.
func Allowed(ctx context.Context, permission string) bool {
	return Require(ctx, permission) == nil
}

// Require returns an Error when a checker is present and denies permission.
func Require(ctx context.Context, permission string) error {
	normalized := normalize(permission)
	if normalized == "" {
		return nil
	}
	checker := CheckerFromContext(ctx)
	if checker == nil || checker.Allowed(normalized) {
		return nil
	}
	actor, _ := ActorFromContext(ctx)
	return DeniedError{Permission: normalized, Actor: actor}
}

// RequireOwnership accepts the owner of a portfolio, or any actor holding
// PortfoliosManage. Without a checker on the context every actor passes.
func RequireOwnership(ctx context.Context, actor, owner uuid.UUID) error {
	if actor == owner || Allowed(ctx, PortfoliosManage) {
		return nil
	}
	return ErrNotOwner
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
