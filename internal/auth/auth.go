package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/permissions"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

var (
	ErrSecretRequired = errors.New("auth: signing secret is required")
	ErrTokenMissing   = errors.New("auth: bearer token missing")
	ErrTokenInvalid   = errors.New("auth: token invalid or expired")
	ErrSubjectInvalid = errors.New("auth: token subject is not a user id")
)

// Claims are the bearer token claims for the admin API. Tokens without
// explicit permissions receive permissions.OwnerDefaults.
type Claims struct {
	Permissions []string `json:"perms,omitempty"`
	jwt.RegisteredClaims
}

// Config configures token signing and verification.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Authenticator issues and verifies HS256 bearer tokens.
type Authenticator struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
	logger   interfaces.Logger
}

// Option customises an Authenticator.
type Option func(*Authenticator)

func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(a *Authenticator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New builds an Authenticator from cfg.
func New(cfg Config, opts ...Option) (*Authenticator, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, ErrSecretRequired
	}
	a := &Authenticator{
		secret:   []byte(secret),
		issuer:   strings.TrimSpace(cfg.Issuer),
		audience: strings.TrimSpace(cfg.Audience),
		ttl:      cfg.TTL,
		now:      time.Now,
		logger:   logging.NoOp(),
	}
	if a.ttl <= 0 {
		a.ttl = 24 * time.Hour
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Issue signs a token for actor. perms may be empty.
func (a *Authenticator) Issue(actor uuid.UUID, perms ...string) (string, error) {
	if actor == uuid.Nil {
		return "", ErrSubjectInvalid
	}
	now := a.now()
	claims := Claims{
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.String(),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	if a.audience != "" {
		claims.Audience = jwt.ClaimStrings{a.audience}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and returns its claims.
func (a *Authenticator) Parse(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrTokenMissing
	}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(a.issuer))
	}
	if a.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(a.audience))
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, parserOpts...)
	if err != nil || !token.Valid {
		return nil, errors.Join(ErrTokenInvalid, err)
	}
	return claims, nil
}

// Actor returns the user id carried in the subject claim.
func (c *Claims) Actor() (uuid.UUID, error) {
	if c == nil {
		return uuid.Nil, ErrSubjectInvalid
	}
	actor, err := uuid.Parse(c.Subject)
	if err != nil || actor == uuid.Nil {
		return uuid.Nil, ErrSubjectInvalid
	}
	return actor, nil
}

// Grants returns the permissions the token carries.
func (c *Claims) Grants() []string {
	if c == nil || len(c.Permissions) == 0 {
		return permissions.OwnerDefaults()
	}
	return c.Permissions
}

// Authenticate verifies the request's bearer token and returns a context
// carrying the actor and their permission checker.
func (a *Authenticator) Authenticate(r *http.Request) (context.Context, error) {
	claims, err := a.Parse(BearerToken(r))
	if err != nil {
		return nil, err
	}
	actor, err := claims.Actor()
	if err != nil {
		return nil, err
	}
	ctx := permissions.WithActor(r.Context(), actor)
	return permissions.WithPermissions(ctx, claims.Grants()...), nil
}

// Middleware rejects requests without a valid bearer token.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := a.Authenticate(r)
		if err != nil {
			a.logger.Debug("auth.rejected", "path", r.URL.Path, "error", err)
			w.Header().Set("WWW-Authenticate", `Bearer realm="portfolio"`)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"missing or invalid token"}}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
