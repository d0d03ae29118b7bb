package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-folio"

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
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

// ItemUUID identifies a content item by collection and final slug, so ids
// survive rebuilds as long as the slug does.
func ItemUUID(collection, slug string) uuid.UUID {
	return UUID(namespace + ":item:" + strings.ToLower(strings.TrimSpace(collection)) + ":" + strings.TrimSpace(slug))
}

// RunUUID identifies one build invocation from its start instant and the
// collections it touched. Used only to correlate log entries.
func RunUUID(startedAt string, collections []string) uuid.UUID {
	return UUID(namespace + ":run:" + strings.TrimSpace(startedAt) + ":" + strings.Join(collections, ","))
}
