// Package session holds the client's current session token in durable storage.
package session

import (
	"context"
	"time"

	"github.com/bookshelf/bookshelf-go/internal/client/storage"
	"github.com/bookshelf/bookshelf-go/internal/crypto"
	"github.com/bookshelf/bookshelf-go/internal/model"
)

// TokenKey is the storage key of the session token.
const TokenKey = "id_token"

// Cache owns the stored session token. The client has no signing key, so
// validity is judged from the token's embedded expiry alone.
type Cache struct {
	store storage.Store
	now   func() time.Time
}

// New creates a Cache backed by store.
func New(store storage.Store) *Cache {
	return &Cache{store: store, now: time.Now}
}

// Store saves token, replacing any previous one.
func (c *Cache) Store(ctx context.Context, token string) error {
	return c.store.Set(ctx, TokenKey, token)
}

// Current returns the stored token, if any.
func (c *Cache) Current(ctx context.Context) (string, bool, error) {
	return c.store.Get(ctx, TokenKey)
}

// IsValid reports whether a stored token exists and has not expired.
// An undecodable token counts as expired.
func (c *Cache) IsValid(ctx context.Context) (bool, error) {
	_, ok, err := c.claims(ctx)
	return ok, err
}

// Identity returns the identity in the stored token when it is valid.
func (c *Cache) Identity(ctx context.Context) (model.Identity, bool, error) {
	claims, ok, err := c.claims(ctx)
	if err != nil || !ok {
		return model.Identity{}, false, err
	}
	return claims.Data, true, nil
}

// Clear removes the stored token, ending the session.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, TokenKey)
}

func (c *Cache) claims(ctx context.Context) (crypto.Claims, bool, error) {
	token, ok, err := c.Current(ctx)
	if err != nil || !ok {
		return crypto.Claims{}, false, err
	}

	claims, err := crypto.DecodeUnverified(token)
	if err != nil {
		return crypto.Claims{}, false, nil
	}
	if c.now().After(claims.Expiry()) {
		return crypto.Claims{}, false, nil
	}
	return claims, true, nil
}
