package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// CredentialKey is the store key holding the remembered credential.
const CredentialKey = "cnv:credential"

// CredentialStore remembers the operator's credential between runs.
// The value itself is never logged.
type CredentialStore struct {
	store  Store
	logger *slog.Logger
}

func NewCredentialStore(store Store, logger *slog.Logger) *CredentialStore {
	return &CredentialStore{store: store, logger: logger}
}

// Load returns the remembered credential, or "" if none.
func (c *CredentialStore) Load(ctx context.Context) (string, error) {
	v, ok, err := c.store.Get(ctx, CredentialKey)
	if err != nil {
		return "", fmt.Errorf("failed to load credential: %w", err)
	}
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(v), nil
}

func (c *CredentialStore) Save(ctx context.Context, credential string) error {
	if err := c.store.Set(ctx, CredentialKey, strings.TrimSpace(credential)); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	c.logger.Debug("Credential saved", "credential_set", true)
	return nil
}

func (c *CredentialStore) Forget(ctx context.Context) error {
	if err := c.store.Delete(ctx, CredentialKey); err != nil {
		return fmt.Errorf("failed to forget credential: %w", err)
	}
	c.logger.Debug("Credential forgotten", "credential_set", false)
	return nil
}
