package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a stable UUID from key with go-hashid, falling back to a SHA1
// namespace UUID when hashing fails. Keys must be prefixed per entity type.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PortfolioUUID derives a portfolio id from the namespace key and its slug.
// Slugs are unique, so the same slug always yields the same id for a deployment.
func PortfolioUUID(namespace, slug string) uuid.UUID {
	return UUID("go-portfolio:" + strings.TrimSpace(namespace) + ":portfolio:" + strings.ToLower(strings.TrimSpace(slug)))
}

// Generator returns a function producing portfolio ids. When namespace is empty
// ids are random.
func Generator(namespace string) func(slug string) uuid.UUID {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return func(string) uuid.UUID { return uuid.New() }
	}
	return func(slug string) uuid.UUID { return PortfolioUUID(namespace, slug) }
}
