// Package cache stores raw backend responses for a limited time so repeated
// dashboard and bot queries do not hit the plans backend.
package cache

import (
	"context"
	"time"
)

// Store is a byte cache with per-entry expiry.
type Store interface {
	// Get returns the cached value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Flush drops every entry owned by the store.
	Flush(ctx context.Context) error
}
