// Package storage persists results and the credential over a small key-value Store.
package storage

import "context"

// Store is a named-key blob store. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
