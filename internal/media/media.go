package media

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

var (
	ErrReferenceRequired = errors.New("media: reference is required")
	ErrReferenceInvalid  = errors.New("media: reference is invalid")
	ErrObjectNotFound    = errors.New("media: object not found in any bucket")
)

// IsAbsolute reports whether reference is already a public URL.
func IsAbsolute(reference string) bool {
	parsed, err := url.Parse(strings.TrimSpace(reference))
	if err != nil {
		return false
	}
	switch parsed.Scheme {
	case "http", "https":
		return parsed.Host != ""
	case "mailto":
		return true
	default:
		return false
	}
}

// normalizeKey trims a storage key and rejects path traversal.
func normalizeKey(reference string) (string, error) {
	key := strings.TrimLeft(strings.TrimSpace(reference), "/")
	if key == "" {
		return "", ErrReferenceRequired
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." {
			return "", ErrReferenceInvalid
		}
	}
	return key, nil
}

// StaticResolver joins storage keys onto a fixed base URL.
type StaticResolver struct {
	base *url.URL
}

var _ interfaces.MediaResolver = (*StaticResolver)(nil)

// NewStaticResolver builds a resolver for baseURL.
func NewStaticResolver(baseURL string) (*StaticResolver, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, ErrReferenceInvalid
	}
	return &StaticResolver{base: parsed}, nil
}

func (r *StaticResolver) ResolveURL(_ context.Context, reference string) (string, error) {
	if IsAbsolute(reference) {
		return strings.TrimSpace(reference), nil
	}
	key, err := normalizeKey(reference)
	if err != nil {
		return "", err
	}
	return r.base.JoinPath(key).String(), nil
}
