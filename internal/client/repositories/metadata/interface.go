// Package metadata stores small client preferences (last folder, last user)
// as key/value pairs in the local state database.
package metadata

import "context"

// Well-known keys.
const (
	KeyLastFolder = "last_folder_id"
	KeyLastUser   = "last_username"
)

type Repository interface {
	// Get returns ("", false, nil) when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
}
