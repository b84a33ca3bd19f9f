package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// ObjectLocator reports whether an object exists in a bucket.
type ObjectLocator interface {
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

// GCSConfig configures the Cloud Storage client.
type GCSConfig struct {
	CredentialsFile string
	// EmulatorHost points the client at a local emulator; authentication is
	// disabled in that mode.
	EmulatorHost string
}

// NewGCSClient opens a storage client for cfg.
func NewGCSClient(ctx context.Context, cfg GCSConfig) (*storage.Client, error) {
	var opts []option.ClientOption
	if host := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"); host != "" {
		opts = append(opts, option.WithEndpoint(host+"/storage/v1/"), option.WithoutAuthentication())
	} else {
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		opts = append(opts, option.WithScopes(storage.ScopeReadOnly))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("media: create storage client: %w", err)
	}
	return client, nil
}

// GCSLocator checks object existence with Cloud Storage attribute lookups.
type GCSLocator struct {
	client *storage.Client
}

// NewGCSLocator wraps client.
func NewGCSLocator(client *storage.Client) *GCSLocator {
	return &GCSLocator{client: client}
}

func (l *GCSLocator) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := l.client.Bucket(bucket).Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// BucketConfig names the buckets searched for media keys.
type BucketConfig struct {
	Primary  string
	Fallback string
	// PublicBaseURL replaces https://storage.googleapis.com when set, for CDNs
	// and emulators.
	PublicBaseURL string
}

// BucketResolver resolves storage keys against a primary bucket and then a
// fallback bucket, returning the public URL of the first hit.
type BucketResolver struct {
	locator ObjectLocator
	cfg     BucketConfig
	logger  interfaces.Logger
}

var _ interfaces.MediaResolver = (*BucketResolver)(nil)

// NewBucketResolver builds a two bucket resolver.
func NewBucketResolver(locator ObjectLocator, cfg BucketConfig, logger interfaces.Logger) *BucketResolver {
	if logger == nil {
		logger = logging.NoOp()
	}
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	return &BucketResolver{locator: locator, cfg: cfg, logger: logger}
}

func (r *BucketResolver) ResolveURL(ctx context.Context, reference string) (string, error) {
	if IsAbsolute(reference) {
		return strings.TrimSpace(reference), nil
	}
	key, err := normalizeKey(reference)
	if err != nil {
		return "", err
	}
	var failures []error
	for _, bucket := range r.buckets() {
		found, err := r.locator.Exists(ctx, bucket, key)
		if err != nil {
			r.logger.Warn("media.lookup.failed", "bucket", bucket, "key", key, "error", err)
			failures = append(failures, fmt.Errorf("%s/%s: %w", bucket, key, err))
			continue
		}
		if found {
			return r.publicURL(bucket, key)
		}
	}
	if len(failures) > 0 {
		return "", fmt.Errorf("media: lookup: %w", errors.Join(failures...))
	}
	r.logger.Debug("media.lookup.miss", "key", key)
	return "", fmt.Errorf("%w: %s", ErrObjectNotFound, key)
}

func (r *BucketResolver) buckets() []string {
	out := make([]string, 0, 2)
	for _, bucket := range []string{r.cfg.Primary, r.cfg.Fallback} {
		if bucket = strings.TrimSpace(bucket); bucket != "" {
			out = append(out, bucket)
		}
	}
	return out
}

func (r *BucketResolver) publicURL(bucket, key string) (string, error) {
	base := r.cfg.PublicBaseURL
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	resolved, err := url.JoinPath(base, bucket, key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReferenceInvalid, err)
	}
	return resolved, nil
}
