package interfaces

import "context"

// MediaResolver turns a stored media reference into a URL a browser can load.
// Absolute URLs are returned unchanged.
type MediaResolver interface {
	ResolveURL(ctx context.Context, reference string) (string, error)
}
