// Package ytcore extracts media stream descriptors from YouTube watch pages.
//
// A Session fetches the watch page, pulls the embedded player response out of
// it (falling back to the page's JSON form), parses the muxed and adaptive
// streams and resolves signature-protected stream URLs by running the
// player's own decipher function in a sandboxed script engine. Deciphered
// operations are cached per player script on the Session.
package ytcore

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ytget/ytcore/internal/config"
	"github.com/ytget/ytcore/internal/logger"
	"github.com/ytget/ytcore/pkg/client"
	"github.com/ytget/ytcore/youtube/cipher"
	"github.com/ytget/ytcore/youtube/page"
)

// DefaultConcurrency bounds parallel stream resolution.
const DefaultConcurrency = 4

// Session ties a fetcher to a decipher cache. It is safe for concurrent use
// once configured; the With* setters are not.
type Session struct {
	id             string
	fetcher        *page.Fetcher
	cache          *cipher.Cache
	concurrency    int
	preferAdaptive bool
}

// New creates a Session with the default HTTP client and an otto-backed
// in-memory decipher cache.
func New() *Session {
	return &Session{
		id:             uuid.NewString(),
		fetcher:        page.NewFetcher(client.New()),
		cache:          cipher.NewCache(),
		concurrency:    DefaultConcurrency,
		preferAdaptive: true,
	}
}

// NewFromConfig builds a Session from loaded configuration. A non-nil reg
// receives the decipher metrics.
func NewFromConfig(c config.Config, reg prometheus.Registerer) (*Session, error) {
	factory, err := cipher.EngineFactory(c.JSEngine)
	if err != nil {
		return nil, err
	}
	opts := []cipher.CacheOption{cipher.WithEngineFactory(factory)}
	if c.CacheDir != "" {
		store, err := cipher.NewFileStore(c.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("open operations store: %w", err)
		}
		opts = append(opts, cipher.WithFileStore(store))
	}
	if reg != nil {
		opts = append(opts, cipher.WithMetrics(cipher.NewMetrics(reg)))
	}

	s := New()
	s.fetcher = page.NewFetcher(client.NewWith(c.ClientConfig()), page.WithClientVersion(c.ClientVersion))
	s.cache = cipher.NewCache(opts...)
	s.preferAdaptive = c.PreferAdaptive
	return s, nil
}

// ID identifies the session in log lines.
func (s *Session) ID() string { return s.id }

// WithFetcher replaces the page fetcher.
func (s *Session) WithFetcher(f *page.Fetcher) *Session {
	if f != nil {
		s.fetcher = f
	}
	return s
}

// WithCache replaces the decipher cache, e.g. to share one across sessions.
func (s *Session) WithCache(c *cipher.Cache) *Session {
	if c != nil {
		s.cache = c
	}
	return s
}

// WithConcurrency bounds parallel stream resolution. Values below 1 mean 1.
func (s *Session) WithConcurrency(n int) *Session {
	if n < 1 {
		n = 1
	}
	s.concurrency = n
	return s
}

// WithPreferAdaptive sets whether adaptive streams lead the candidate pool
// for queries.
func (s *Session) WithPreferAdaptive(prefer bool) *Session {
	s.preferAdaptive = prefer
	return s
}

func (s *Session) log() *logger.ComponentLogger {
	return logger.WithComponent(logger.ComponentSession).With(map[string]interface{}{"session": s.id})
}
