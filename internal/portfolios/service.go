package portfolios

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/permissions"
	"github.com/goliatone/go-portfolio/internal/sections"
	"github.com/goliatone/go-portfolio/internal/validation"
	"github.com/goliatone/go-portfolio/pkg/activity"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// Service manages portfolios and their section configuration.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Portfolio, error)
	Get(ctx context.Context, id uuid.UUID) (*Portfolio, error)
	LoadPortfolio(ctx context.Context, id uuid.UUID) (*Portfolio, error)
	GetBySlug(ctx context.Context, slug string) (*Portfolio, error)
	GetPublished(ctx context.Context, slug string) (*Portfolio, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Portfolio, error)
	SavePortfolioConfig(ctx context.Context, req SaveConfigRequest) (*Portfolio, error)
	UpdateDetails(ctx context.Context, req UpdateDetailsRequest) (*Portfolio, error)
	ReorderSection(ctx context.Context, req ReorderSectionRequest) (*Portfolio, error)
	ToggleSection(ctx context.Context, req ToggleSectionRequest) (*Portfolio, error)
	UpdateSection(ctx context.Context, req UpdateSectionRequest) (*Portfolio, error)
	Publish(ctx context.Context, req PublishRequest) (*Portfolio, error)
	Unpublish(ctx context.Context, req PublishRequest) (*Portfolio, error)
	Delete(ctx context.Context, req DeleteRequest) error
	Resolve(portfolio *Portfolio) []sections.Resolved
	ResolveAll(portfolio *Portfolio) []sections.Resolved
	Registry() *sections.Registry
}

// CreateRequest captures the fields needed to start a portfolio.
type CreateRequest struct {
	OwnerID        uuid.UUID
	Title          string
	Slug           string
	SectionsConfig sections.Overrides
	Content        map[string]any
	ThemeName      string
	ThemeVariant   string
}

// SaveConfigRequest replaces the section overrides and patches content.
// A nil SectionsConfig keeps the stored overrides. Nil values in
// ContentPatch delete the field.
type SaveConfigRequest struct {
	ID             uuid.UUID
	ActorID        uuid.UUID
	SectionsConfig sections.Overrides
	ContentPatch   map[string]any
}

// UpdateDetailsRequest changes portfolio metadata. Nil fields are left alone.
type UpdateDetailsRequest struct {
	ID           uuid.UUID
	ActorID      uuid.UUID
	Title        *string
	Slug         *string
	ThemeName    *string
	ThemeVariant *string
}

type ReorderSectionRequest struct {
	ID       uuid.UUID
	ActorID  uuid.UUID
	Section  sections.ID
	NewIndex int
}

type ToggleSectionRequest struct {
	ID      uuid.UUID
	ActorID uuid.UUID
	Section sections.ID
	Enabled bool
}

// UpdateSectionRequest edits the display overrides of one section. Nil fields
// are left alone; blank strings clear the override. Options with nil values
// are removed.
type UpdateSectionRequest struct {
	ID       uuid.UUID
	ActorID  uuid.UUID
	Section  sections.ID
	Enabled  *bool
	Title    *string
	Name     *string
	ViewType *string
	Options  map[string]any
}

type PublishRequest struct {
	ID      uuid.UUID
	ActorID uuid.UUID
}

type DeleteRequest struct {
	ID      uuid.UUID
	ActorID uuid.UUID
}

// IDGenerator derives the id for a new portfolio from its slug.
type IDGenerator func(slug string) uuid.UUID

// ServiceOption configures the service.
type ServiceOption func(*service)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator sets the id generator used by Create.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.nextID = generator
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithActivityEmitter wires activity emission.
func WithActivityEmitter(emitter *activity.Emitter) ServiceOption {
	return func(s *service) {
		if emitter != nil {
			s.activity = emitter
		}
	}
}

// WithRegistry replaces the built-in section catalog.
func WithRegistry(registry *sections.Registry) ServiceOption {
	return func(s *service) {
		if registry != nil {
			s.registry = registry
		}
	}
}

type service struct {
	repo      PortfolioRepository
	registry  *sections.Registry
	validator *validation.ContentValidator
	now       func() time.Time
	nextID    IDGenerator
	logger    interfaces.Logger
	activity  *activity.Emitter
}

// NewService constructs the portfolio service.
func NewService(repo PortfolioRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:     repo,
		registry: sections.DefaultRegistry(),
		now:      time.Now,
		nextID:   func(string) uuid.UUID { return uuid.New() },
		logger:   logging.NoOp(),
		activity: activity.NewEmitter(nil, activity.Config{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = validation.NewContentValidator(s.registry)
	return s
}

func (s *service) Registry() *sections.Registry {
	return s.registry
}

func (s *service) Resolve(portfolio *Portfolio) []sections.Resolved {
	if portfolio == nil {
		return sections.Resolve(s.registry, nil)
	}
	return sections.Resolve(s.registry, portfolio.SectionsConfig)
}

func (s *service) ResolveAll(portfolio *Portfolio) []sections.Resolved {
	if portfolio == nil {
		return sections.ResolveAll(s.registry, nil)
	}
	return sections.ResolveAll(s.registry, portfolio.SectionsConfig)
}

// Create stores a new draft portfolio.
func (s *service) Create(ctx context.Context, req CreateRequest) (*Portfolio, error) {
	if req.OwnerID == uuid.Nil {
		return nil, ErrOwnerRequired
	}
	if err := permissions.Require(ctx, permissions.PortfoliosCreate); err != nil {
		return nil, errors.Join(ErrForbidden, err)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	slugValue, err := normalizeSlug(req.Slug, title)
	if err != nil {
		return nil, err
	}
	if err := validateTheme(req.ThemeName, req.ThemeVariant); err != nil {
		return nil, err
	}
	content, err := s.validator.NormalizePatch(req.Content)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugAvailable(ctx, slugValue, uuid.Nil); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	portfolio := &Portfolio{
		ID:             s.nextID(slugValue),
		OwnerID:        req.OwnerID,
		Slug:           slugValue,
		Title:          title,
		Status:         StatusDraft,
		SectionsConfig: req.SectionsConfig.Clone(),
		Content:        applyContentPatch(nil, content),
		ThemeName:      strings.TrimSpace(req.ThemeName),
		ThemeVariant:   strings.TrimSpace(req.ThemeVariant),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.repo.Create(ctx, portfolio)
	if err != nil {
		s.log(portfolio.ID, "").Error("portfolios.create.failed", "slug", slugValue, "error", err)
		return nil, persistenceError("create", err)
	}
	s.log(created.ID, "").Info("portfolios.create.success", "slug", created.Slug)
	s.emitActivity(ctx, req.OwnerID, "create", created, map[string]any{"slug": created.Slug})
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Portfolio, error) {
	portfolio, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, persistenceError("get", err)
	}
	if err := s.authorize(ctx, uuid.Nil, portfolio, permissions.PortfoliosRead); err != nil {
		return nil, err
	}
	return portfolio, nil
}

// LoadPortfolio returns the stored portfolio including its raw overrides.
func (s *service) LoadPortfolio(ctx context.Context, id uuid.UUID) (*Portfolio, error) {
	return s.Get(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slugValue string) (*Portfolio, error) {
	portfolio, err := s.repo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slugValue)))
	if err != nil {
		return nil, persistenceError("get_by_slug", err)
	}
	return portfolio, nil
}

// GetPublished returns the portfolio only when it is visible to visitors.
// Drafts are reported as not found.
func (s *service) GetPublished(ctx context.Context, slugValue string) (*Portfolio, error) {
	portfolio, err := s.GetBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	if !portfolio.IsPublished() {
		return nil, &NotFoundError{Resource: "portfolio", Key: slugValue}
	}
	return portfolio, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Portfolio, error) {
	if ownerID == uuid.Nil {
		return nil, ErrOwnerRequired
	}
	if err := permissions.Require(ctx, permissions.PortfoliosRead); err != nil {
		return nil, errors.Join(ErrForbidden, err)
	}
	records, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, persistenceError("list", err)
	}
	return records, nil
}

// SavePortfolioConfig replaces the overrides blob and applies the content
// patch. Validation happens before anything is written.
func (s *service) SavePortfolioConfig(ctx context.Context, req SaveConfigRequest) (*Portfolio, error) {
	patch, err := s.validator.NormalizePatch(req.ContentPatch)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, "save_config", req.ID, req.ActorID, permissions.PortfoliosUpdate, func(p *Portfolio) (bool, error) {
		if req.SectionsConfig != nil {
			p.SectionsConfig = req.SectionsConfig.Clone()
		}
		p.Content = applyContentPatch(p.Content, patch)
		return true, nil
	}, func(p *Portfolio) map[string]any {
		return map[string]any{"fields": slices.Sorted(maps.Keys(patch)), "sections_replaced": req.SectionsConfig != nil}
	})
}

func (s *service) UpdateDetails(ctx context.Context, req UpdateDetailsRequest) (*Portfolio, error) {
	return s.mutate(ctx, "update", req.ID, req.ActorID, permissions.PortfoliosUpdate, func(p *Portfolio) (bool, error) {
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return false, ErrTitleRequired
			}
			p.Title = title
		}
		if req.Slug != nil {
			slugValue, err := normalizeSlug(*req.Slug, "")
			if err != nil {
				return false, err
			}
			if slugValue != p.Slug {
				if err := s.ensureSlugAvailable(ctx, slugValue, p.ID); err != nil {
					return false, err
				}
				p.Slug = slugValue
			}
		}
		if req.ThemeName != nil {
			p.ThemeName = strings.TrimSpace(*req.ThemeName)
		}
		if req.ThemeVariant != nil {
			p.ThemeVariant = strings.TrimSpace(*req.ThemeVariant)
		}
		return true, validateTheme(p.ThemeName, p.ThemeVariant)
	}, func(p *Portfolio) map[string]any {
		return map[string]any{"slug": p.Slug, "title": p.Title}
	})
}

// ReorderSection moves one section. Unknown or disabled sections leave the
// portfolio untouched and nothing is written.
func (s *service) ReorderSection(ctx context.Context, req ReorderSectionRequest) (*Portfolio, error) {
	return s.mutate(ctx, "reorder", req.ID, req.ActorID, permissions.PortfoliosUpdate, func(p *Portfolio) (bool, error) {
		next := sections.Reorder(s.registry, p.SectionsConfig, req.Section, req.NewIndex)
		if overridesEqual(p.SectionsConfig, next) {
			return false, nil
		}
		p.SectionsConfig = next
		return true, nil
	}, func(p *Portfolio) map[string]any {
		return map[string]any{"section": string(req.Section), "index": req.NewIndex}
	})
}

func (s *service) ToggleSection(ctx context.Context, req ToggleSectionRequest) (*Portfolio, error) {
	return s.UpdateSection(ctx, UpdateSectionRequest{
		ID:      req.ID,
		ActorID: req.ActorID,
		Section: req.Section,
		Enabled: &req.Enabled,
	})
}

func (s *service) UpdateSection(ctx context.Context, req UpdateSectionRequest) (*Portfolio, error) {
	def, ok := s.registry.GetDefinition(req.Section)
	if !ok {
		return nil, ErrSectionUnknown
	}
	return s.mutate(ctx, "update_section", req.ID, req.ActorID, permissions.PortfoliosUpdate, func(p *Portfolio) (bool, error) {
		next := p.SectionsConfig
		if req.Enabled != nil {
			next = sections.SetEnabled(s.registry, next, def.ID, *req.Enabled)
		}
		if req.Title != nil {
			next = sections.SetTitle(s.registry, next, def.ID, *req.Title)
		}
		if req.Name != nil {
			next = sections.SetName(s.registry, next, def.ID, *req.Name)
		}
		if req.ViewType != nil {
			viewType := strings.TrimSpace(*req.ViewType)
			if viewType != "" && len(def.ViewTypes) > 0 && !slices.Contains(def.ViewTypes, viewType) {
				return false, &validation.ContentError{Issues: []validation.ValidationIssue{{
					Field:   string(def.ID) + ".viewType",
					Message: "unsupported view type " + viewType,
				}}}
			}
			next = sections.SetViewType(s.registry, next, def.ID, viewType)
		}
		for key, value := range req.Options {
			next = sections.SetOption(s.registry, next, def.ID, key, value)
		}
		if overridesEqual(p.SectionsConfig, next) {
			return false, nil
		}
		p.SectionsConfig = next
		return true, nil
	}, func(p *Portfolio) map[string]any {
		meta := map[string]any{"section": string(def.ID)}
		if req.Enabled != nil {
			meta["enabled"] = *req.Enabled
		}
		return meta
	})
}

func (s *service) Publish(ctx context.Context, req PublishRequest) (*Portfolio, error) {
	return s.mutate(ctx, "publish", req.ID, req.ActorID, permissions.PortfoliosPublish, func(p *Portfolio) (bool, error) {
		if p.Status == StatusPublished {
			return false, nil
		}
		now := s.now().UTC()
		p.Status = StatusPublished
		p.PublishedAt = &now
		return true, nil
	}, nil)
}

func (s *service) Unpublish(ctx context.Context, req PublishRequest) (*Portfolio, error) {
	return s.mutate(ctx, "unpublish", req.ID, req.ActorID, permissions.PortfoliosPublish, func(p *Portfolio) (bool, error) {
		if p.Status == StatusDraft {
			return false, nil
		}
		p.Status = StatusDraft
		p.PublishedAt = nil
		return true, nil
	}, nil)
}

func (s *service) Delete(ctx context.Context, req DeleteRequest) error {
	portfolio, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return persistenceError("delete", err)
	}
	if err := s.authorize(ctx, req.ActorID, portfolio, permissions.PortfoliosDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, req.ID); err != nil {
		s.log(req.ID, "").Error("portfolios.delete.failed", "error", err)
		return persistenceError("delete", err)
	}
	s.log(req.ID, "").Info("portfolios.delete.success")
	s.emitActivity(ctx, req.ActorID, "delete", portfolio, map[string]any{"slug": portfolio.Slug})
	return nil
}

// mutate loads, authorizes, applies change to a copy and persists it. When
// change reports no modification the stored record is returned unchanged.
func (s *service) mutate(
	ctx context.Context,
	op string,
	id, actor uuid.UUID,
	permission string,
	change func(*Portfolio) (bool, error),
	meta func(*Portfolio) map[string]any,
) (*Portfolio, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, persistenceError(op, err)
	}
	if err := s.authorize(ctx, actor, current, permission); err != nil {
		return nil, err
	}

	next := current.Clone()
	changed, err := change(next)
	if err != nil {
		return nil, err
	}
	if !changed {
		s.log(id, "").Debug("portfolios." + op + ".noop")
		return current, nil
	}
	next.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		s.log(id, "").Error("portfolios."+op+".failed", "error", err)
		return nil, persistenceError(op, err)
	}
	s.log(id, "").Info("portfolios." + op + ".success")

	var metadata map[string]any
	if meta != nil {
		metadata = meta(updated)
	}
	s.emitActivity(ctx, actor, op, updated, metadata)
	return updated, nil
}

// authorize checks the permission token and ownership. The actor falls back to
// the one stored on the context; a nil actor is only accepted from trusted
// callers that carry no permission checker.
func (s *service) authorize(ctx context.Context, actor uuid.UUID, portfolio *Portfolio, permission string) error {
	if err := permissions.Require(ctx, permission); err != nil {
		return errors.Join(ErrForbidden, err)
	}
	if actor == uuid.Nil {
		actor, _ = permissions.ActorFromContext(ctx)
	}
	if actor == uuid.Nil {
		if permissions.CheckerFromContext(ctx) != nil {
			return ErrActorRequired
		}
		return nil
	}
	if err := permissions.RequireOwnership(ctx, actor, portfolio.OwnerID); err != nil {
		return errors.Join(ErrForbidden, err)
	}
	return nil
}

func (s *service) ensureSlugAvailable(ctx context.Context, slugValue string, self uuid.UUID) error {
	existing, err := s.repo.GetBySlug(ctx, slugValue)
	if err == nil {
		if existing.ID != self {
			return ErrSlugExists
		}
		return nil
	}
	if IsNotFound(err) {
		return nil
	}
	return persistenceError("check_slug", err)
}

func (s *service) emitActivity(ctx context.Context, actor uuid.UUID, verb string, portfolio *Portfolio, meta map[string]any) {
	if s.activity == nil || !s.activity.Enabled() || portfolio == nil {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["status"] = string(portfolio.Status)
	event := activity.Event{
		Verb:       verb,
		ActorID:    actor.String(),
		UserID:     portfolio.OwnerID.String(),
		ObjectType: "portfolio",
		ObjectID:   portfolio.ID.String(),
		Metadata:   meta,
	}
	if err := s.activity.Emit(ctx, event); err != nil {
		s.log(portfolio.ID, "").Warn("portfolios.activity.failed", "verb", verb, "error", err)
	}
}

func (s *service) log(id uuid.UUID, section string) interfaces.Logger {
	return logging.WithPortfolio(s.logger, id.String(), section)
}

func normalizeSlug(raw, fallback string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		candidate = strings.TrimSpace(fallback)
	}
	if candidate == "" {
		return "", ErrSlugInvalid
	}
	normalized, err := slug.Normalize(candidate)
	if err != nil || normalized == "" || !slug.IsValid(normalized) {
		return "", ErrSlugInvalid
	}
	return strings.ToLower(normalized), nil
}

func validateTheme(name, variant string) error {
	if strings.TrimSpace(name) == "" && strings.TrimSpace(variant) != "" {
		return ErrThemeInvalid
	}
	return nil
}

// applyContentPatch returns a copy of content with patch applied. Nil values
// remove the key.
func applyContentPatch(content, patch map[string]any) map[string]any {
	out := cloneContent(content)
	for key, value := range patch {
		if value == nil {
			delete(out, key)
			continue
		}
		out[key] = value
	}
	return out
}

func overridesEqual(a, b sections.Overrides) bool {
	left, err := a.Value()
	if err != nil {
		return false
	}
	right, err := b.Value()
	if err != nil {
		return false
	}
	return left == right
}
