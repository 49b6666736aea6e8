// Package cache stores derived data, such as dump-package output, between
// runs.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: JSON entries under a local directory (the CLI default)
//   - [RedisCache]: a shared Redis instance, for CI machines that build the
//     same workspace
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer], which hashes the inputs that determine a value.
// A dump is keyed by the manifest content and toolchain, so editing a
// manifest or switching toolchains never serves stale output.
package cache

import (
	"context"
	"time"
)

// TTLDump is how long dump-package output stays cached. Entries are keyed by
// content, so the TTL only bounds disk use.
const TTLDump = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
