// Package tenant derives vector-collection names from platform identities.
//
// Every tenant gets a pair of isolated collections: one for conversation
// turns and one for uploaded documents. The derivation is a pure function
// so the naming rules can be tested without any store.
package tenant

import "strings"

// Collection name prefixes. The sweeper recognizes document collections by
// the DocumentPrefix convention.
const (
	ConversationPrefix = "conv_"
	DocumentPrefix     = "docs_"

	// KnowledgeCollection is the single shared, non-tenant collection.
	KnowledgeCollection = "global_knowledge_base"
)

// Key identifies a tenant by platform and the platform's external user id.
type Key struct {
	Platform   string
	ExternalID string
}

// NewKey builds a tenant key. An empty platform defaults to "whatsapp",
// matching the historic default of the messaging ingress.
func NewKey(platform, externalID string) Key {
	if platform == "" {
		platform = "whatsapp"
	}
	return Key{Platform: platform, ExternalID: externalID}
}

// ID returns the sanitized tenant identifier used in collection names.
// The transform keeps readable markers for common identifier characters
// ("@" and ".") and maps everything else outside [A-Za-z0-9_] to "_".
// It is idempotent: sanitizing an already-sanitized id is a no-op.
func (k Key) ID() string {
	raw := k.Platform + "_" + k.ExternalID
	raw = strings.ReplaceAll(raw, "-", "_")
	raw = strings.ReplaceAll(raw, "@", "_at_")
	raw = strings.ReplaceAll(raw, ".", "_dot_")

	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		if c == '_' ||
			(c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ConversationCollection returns the tenant's conversation collection name.
func (k Key) ConversationCollection() string {
	return ConversationPrefix + k.ID()
}

// DocumentCollection returns the tenant's document collection name.
func (k Key) DocumentCollection() string {
	return DocumentPrefix + k.ID()
}
