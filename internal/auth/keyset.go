package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	jose "github.com/go-jose/go-jose/v3"
)

// ErrKeyNotFound indicates the key id is absent even after a forced
// refetch of the provider's key set.
var ErrKeyNotFound = errors.New("signing key not found")

// ErrKeyFetchFailed indicates the key-set endpoint could not be read.
var ErrKeyFetchFailed = errors.New("key set fetch failed")

// keySet is an immutable snapshot of the provider's published keys.
type keySet struct {
	keys      map[string]jose.JSONWebKey
	fetchedAt time.Time
}

// KeySetCache caches the identity provider's public signing keys.
// Lookups against a fresh cache never touch the network; a miss or a
// stale cache triggers exactly one synchronous refetch. The snapshot is
// published by pointer swap so readers never observe a partial set.
type KeySetCache struct {
	url     string
	ttl     time.Duration
	client  *http.Client
	now     func() time.Time
	current atomic.Pointer[keySet]

	// refreshMu serializes refetches so concurrent misses do not
	// stampede the issuer. Readers never take it.
	refreshMu sync.Mutex
}

// NewKeySetCache builds an empty cache for the given key-set endpoint.
func NewKeySetCache(url string, ttl, fetchTimeout time.Duration) *KeySetCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &KeySetCache{
		url:    url,
		ttl:    ttl,
		client: &http.Client{Timeout: fetchTimeout},
		now:    time.Now,
	}
}

// ResolveKey returns the public key with the given id. A fresh cached
// set is consulted first; on miss the set is invalidated and refetched
// once, and only then does the lookup fail with ErrKeyNotFound.
func (c *KeySetCache) ResolveKey(ctx context.Context, kid string) (*jose.JSONWebKey, error) {
	if set := c.current.Load(); set != nil && c.now().Sub(set.fetchedAt) < c.ttl {
		if key, ok := set.keys[kid]; ok {
			return &key, nil
		}
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another caller may have refreshed while we waited on the lock.
	if set := c.current.Load(); set != nil && c.now().Sub(set.fetchedAt) < c.ttl {
		if key, ok := set.keys[kid]; ok {
			return &key, nil
		}
		// A fresh set that lacks the key id can no longer be trusted
		// and is discarded before the forced refetch. A merely stale
		// set stays put: if the refetch fails, the old snapshot is
		// preserved for subsequent attempts.
		c.current.Store(nil)
	}

	set, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.current.Store(set)

	if key, ok := set.keys[kid]; ok {
		return &key, nil
	}
	return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
}

func (c *KeySetCache) fetch(ctx context.Context) (*keySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFetchFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrKeyFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFetchFailed, err)
	}

	var jwks jose.JSONWebKeySet
	if err := json.Unmarshal(body, &jwks); err != nil {
		return nil, fmt.Errorf("%w: malformed key set: %v", ErrKeyFetchFailed, err)
	}

	keys := make(map[string]jose.JSONWebKey, len(jwks.Keys))
	for _, key := range jwks.Keys {
		if key.KeyID == "" {
			continue
		}
		keys[key.KeyID] = key
	}

	return &keySet{keys: keys, fetchedAt: c.now()}, nil
}
