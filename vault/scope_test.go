package vault_test

import (
	"testing"

	"github.com/goliatone/go-photo-vault/cache"
	"github.com/goliatone/go-photo-vault/vault"
)

func TestResolveScope(t *testing.T) {
	tests := []struct {
		name        string
		requesterID string
		ownerID     string
		wantOwner   string
		wantTag     string
		wantPublic  bool
	}{
		{
			name:        "own collection when owner omitted",
			requesterID: "alice",
			ownerID:     "",
			wantOwner:   "alice",
			wantTag:     cache.ScopeOwner,
		},
		{
			name:        "own collection when owner is self",
			requesterID: "alice",
			ownerID:     "alice",
			wantOwner:   "alice",
			wantTag:     cache.ScopeOwner,
		},
		{
			name:        "another user's collection is public only",
			requesterID: "alice",
			ownerID:     "bob",
			wantOwner:   "bob",
			wantTag:     cache.ScopePublic,
			wantPublic:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, scope := vault.ResolveScope(tt.requesterID, tt.ownerID)
			if owner != tt.wantOwner {
				t.Errorf("owner = %q, want %q", owner, tt.wantOwner)
			}
			if scope.Tag != tt.wantTag {
				t.Errorf("scope.Tag = %q, want %q", scope.Tag, tt.wantTag)
			}
			if scope.PublicOnly != tt.wantPublic {
				t.Errorf("scope.PublicOnly = %v, want %v", scope.PublicOnly, tt.wantPublic)
			}
		})
	}
}
