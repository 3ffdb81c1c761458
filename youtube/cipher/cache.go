package cipher

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ytget/ytcore/errs"
	"github.com/ytget/ytcore/internal/logger"
)

// ScriptLoader returns the text of a player script.
type ScriptLoader func(ctx context.Context) (string, error)

// Cache holds one ready Decipherer per player script identity, typically the
// script URL. First-time initialization for a key runs once even when many
// callers ask for it concurrently. A Cache is owned by its caller; there is
// no package-level instance.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Decipherer
	failed  map[string]error
	group   singleflight.Group

	newEngine func() Engine
	store     *FileStore
	metrics   *Metrics
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithEngineFactory sets the constructor used for each new Decipherer.
func WithEngineFactory(f func() Engine) CacheOption {
	return func(c *Cache) {
		if f != nil {
			c.newEngine = f
		}
	}
}

// WithFileStore persists located operations in store.
func WithFileStore(store *FileStore) CacheOption {
	return func(c *Cache) { c.store = store }
}

// WithMetrics records cache and decipher counters.
func WithMetrics(m *Metrics) CacheOption {
	return func(c *Cache) { c.metrics = m }
}

// NewCache returns an empty cache. Engines default to otto.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries:   make(map[string]*Decipherer),
		failed:    make(map[string]error),
		newEngine: func() Engine { return NewOttoEngine() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Len returns the number of ready decipherers.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Forget drops the decipherer, a remembered locate failure and any persisted
// operations for key.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	delete(c.failed, key)
	c.mu.Unlock()
	if c.store != nil {
		_ = c.store.Delete(key)
	}
}

// Get returns the Decipherer for key, building it on first use from
// persisted operations or from the script returned by load.
//
// A script whose decipher function cannot be located is remembered as
// unusable and its error returned until Forget is called for key. Other
// failures are not cached, so a later call retries.
//
// The build shared by concurrent callers is not tied to any one caller's
// context; each caller stops waiting when its own ctx is done.
func (c *Cache) Get(ctx context.Context, key string, load ScriptLoader) (*Decipherer, error) {
	c.mu.RLock()
	d, ok := c.entries[key]
	failed := c.failed[key]
	c.mu.RUnlock()
	if ok {
		c.metrics.observeCache("memory", resultHit)
		return d, nil
	}
	if failed != nil {
		c.metrics.observeCache("memory", resultFailed)
		return nil, failed
	}
	c.metrics.observeCache("memory", resultMiss)

	buildCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		c.mu.RLock()
		d, ok := c.entries[key]
		failed := c.failed[key]
		c.mu.RUnlock()
		if ok {
			return d, nil
		}
		if failed != nil {
			return nil, failed
		}
		d, err := c.build(buildCtx, key, load)
		if err != nil {
			if errors.Is(err, errs.ErrLocatorNotFound) {
				c.mu.Lock()
				c.failed[key] = err
				c.mu.Unlock()
			}
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = d
		c.mu.Unlock()
		return d, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Decipherer), nil
	}
}

func (c *Cache) build(ctx context.Context, key string, load ScriptLoader) (*Decipherer, error) {
	log := logger.WithComponent(logger.ComponentCipher)

	ops, fromStore := c.storedOperations(key)
	if !fromStore {
		script, err := load(ctx)
		if err != nil {
			return nil, err
		}
		ops, err = Locate(script)
		if err != nil {
			c.metrics.observeLocate(resultFailed)
			return nil, err
		}
		c.metrics.observeLocate(resultOK)
		if c.store != nil {
			if err := c.store.Save(key, ops); err != nil {
				log.Warn("Failed to persist decipher operations", map[string]interface{}{"error": err.Error()})
			} else {
				c.metrics.observeCache("file", resultStored)
			}
		}
	}

	d := NewDecipherer(c.newEngine())
	d.metrics = c.metrics
	if err := d.Initialize(ops); err != nil {
		if fromStore {
			// Stale entry from an older build of the locator.
			_ = c.store.Delete(key)
		}
		return nil, err
	}
	log.Debug("Cached decipherer", map[string]interface{}{"key": key, "from_store": fromStore})
	return d, nil
}

func (c *Cache) storedOperations(key string) (Operations, bool) {
	if c.store == nil {
		return Operations{}, false
	}
	ops, ok := c.store.Load(key)
	if ok {
		c.metrics.observeCache("file", resultHit)
	} else {
		c.metrics.observeCache("file", resultMiss)
	}
	return ops, ok
}
