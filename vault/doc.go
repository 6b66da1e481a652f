// Package vault holds the domain services for photos, albums and users.
//
// Services are thin cache-aside fronts over the store ports: reads resolve
// through the shared cache keyed by owner, scope and query fingerprint, and
// mutations run the invalidator so no stale entry outlives a write. Photo
// uploads go through a compensating saga so a failed record write never
// leaves an orphaned blob.
package vault
