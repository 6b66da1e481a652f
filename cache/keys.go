package cache

import "strings"

// KeySeparator delimits cache key segments.
const KeySeparator = ":"

// Scope tags distinguish the owner view of a query from the
// visibility-filtered public view. Two scopes never share a key: a public
// viewer must not get a hit populated for the owner, and the owner must not
// be narrowed by a public entry.
const (
	ScopeOwner  = "owner"
	ScopePublic = "public"
)

// Keyspace builds the cache keys for one resource type. List keys carry the
// plural tag, an owner segment, a scope tag and the query fingerprint; item
// keys carry the singular tag, owner, resource id and scope tag. The layout
// makes `{listTag}:{owner}:` a stable prefix covering every cached list
// variant for that owner, which is what prefix invalidation relies on.
type Keyspace struct {
	listTag string
	itemTag string
}

// NewKeyspace creates a Keyspace from the plural (list) and singular (item)
// resource tags, e.g. NewKeyspace("photos", "photo").
func NewKeyspace(listTag, itemTag string) Keyspace {
	return Keyspace{listTag: listTag, itemTag: itemTag}
}

// ListKey returns the key for one normalized list query under one scope.
func (k Keyspace) ListKey(ownerID, scope, fingerprint string) string {
	return join(k.listTag, ownerID, scope, fingerprint)
}

// ListPrefix returns the prefix shared by every list key for ownerID,
// regardless of scope or query shape.
func (k Keyspace) ListPrefix(ownerID string) string {
	return join(k.listTag, ownerID) + KeySeparator
}

// ItemKey returns the single-item key for one scope.
func (k Keyspace) ItemKey(ownerID, id, scope string) string {
	return join(k.itemTag, ownerID, id, scope)
}

// ItemKeys returns the single-item keys for both scope tags. Invalidation
// deletes both: either may hold a now-stale copy.
func (k Keyspace) ItemKeys(ownerID, id string) []string {
	return []string{
		k.ItemKey(ownerID, id, ScopeOwner),
		k.ItemKey(ownerID, id, ScopePublic),
	}
}

func join(segments ...string) string {
	return strings.Join(segments, KeySeparator)
}
