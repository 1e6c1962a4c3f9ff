package storage

import (
	"context"
)

// Storage keys shared by durable and ephemeral stores.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user" // JSON snapshot of api.User
)

// KV is a string key/value store. The session layer uses two of them:
// a durable one that survives restarts and an ephemeral one scoped to
// the running client.
type KV interface {
	// Get returns ErrNotFound when key is absent
	Get(ctx context.Context, key string) (string, error)

	// Set stores or overwrites key
	Set(ctx context.Context, key, value string) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}
