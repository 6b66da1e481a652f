package vault

import "github.com/goliatone/go-photo-vault/cache"

// Scope is the resolved access level for one request. Tag feeds the cache key
// so owner and public views of the same data never share entries; PublicOnly
// is threaded to the store so hidden records surface as not-found.
type Scope struct {
	Tag        string
	PublicOnly bool
}

// ResolveScope decides the access level for requesterID reading ownerID's
// resources. An empty ownerID means the requester is browsing their own
// collection.
func ResolveScope(requesterID, ownerID string) (owner string, scope Scope) {
	if ownerID == "" || ownerID == requesterID {
		return requesterID, Scope{Tag: cache.ScopeOwner}
	}
	return ownerID, Scope{Tag: cache.ScopePublic, PublicOnly: true}
}
