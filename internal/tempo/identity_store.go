package tempo

import (
	"context"
	"fmt"

	"github.com/colonyops/tempo/internal/core/identity"
	"github.com/colonyops/tempo/internal/core/kv"
)

const (
	identityNamespace = "identity"
	identityCurrent   = "current"
)

// IdentityStore persists the signed-in identity under "identity_current".
type IdentityStore struct {
	kv *kv.TypedKV[identity.Identity]
}

// NewIdentityStore creates an IdentityStore.
func NewIdentityStore(store kv.KV) *IdentityStore {
	return &IdentityStore{kv: kv.Scoped[identity.Identity](store, identityNamespace)}
}

// Load returns the stored identity, or the zero identity when none is stored.
func (s *IdentityStore) Load(ctx context.Context) (identity.Identity, error) {
	id, _, err := s.kv.Lookup(ctx, identityCurrent)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("load identity: %w", err)
	}
	return id, nil
}

// Save stores id as the signed-in identity.
func (s *IdentityStore) Save(ctx context.Context, id identity.Identity) error {
	if err := s.kv.Set(ctx, identityCurrent, id); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// Clear removes the stored identity.
func (s *IdentityStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, identityCurrent); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}
