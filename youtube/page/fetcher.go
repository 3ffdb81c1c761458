package page

import (
	"compress/bzip2"
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/ytget/ytcore/errs"
	"github.com/ytget/ytcore/internal/logger"
	"github.com/ytget/ytcore/pkg/client"
)

const (
	// BaseURL is the origin pages and relative script paths are resolved against.
	BaseURL = "https://www.youtube.com"

	// DefaultClientVersion is sent with the JSON fallback request.
	DefaultClientVersion = "2.20250312.04.00"
	clientNameWEB        = "1"

	acceptLanguage = "en-US,en;q=0.9"
	maxBodyBytes   = 32 << 20
)

// Doer sends HTTP requests. *http.Client and *client.Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError reports a response with a status other than 200.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// Is maps 429 onto errs.ErrRateLimited.
func (e *StatusError) Is(target error) bool {
	return target == errs.ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// Fetcher retrieves watch pages and player scripts.
type Fetcher struct {
	doer          Doer
	base          string
	clientVersion string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL points the fetcher at another origin, mostly for tests.
func WithBaseURL(base string) Option {
	return func(f *Fetcher) { f.base = strings.TrimRight(base, "/") }
}

// WithClientVersion overrides the X-YouTube-Client-Version header value.
func WithClientVersion(v string) Option {
	return func(f *Fetcher) {
		if v != "" {
			f.clientVersion = v
		}
	}
}

// NewFetcher returns a Fetcher sending requests through doer. A nil doer
// falls back to client.New().
func NewFetcher(doer Doer, opts ...Option) *Fetcher {
	if doer == nil {
		doer = client.New()
	}
	f := &Fetcher{doer: doer, base: BaseURL, clientVersion: DefaultClientVersion}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Base returns the origin the fetcher resolves against.
func (f *Fetcher) Base() string { return f.base }

// WatchURL returns the watch page URL for a video id.
func (f *Fetcher) WatchURL(videoID string) string {
	return f.base + "/watch?v=" + url.QueryEscape(videoID)
}

// WatchPage returns the HTML of the watch page.
func (f *Fetcher) WatchPage(ctx context.Context, videoID string) (string, error) {
	body, err := f.get(ctx, f.WatchURL(videoID), nil)
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}
	return string(body), nil
}

// FallbackJSON requests the JSON form of the watch page (pbj=1), which
// carries the player response without the surrounding HTML.
func (f *Fetcher) FallbackJSON(ctx context.Context, videoID string) ([]byte, error) {
	h := http.Header{}
	h.Set("X-YouTube-Client-Name", clientNameWEB)
	h.Set("X-YouTube-Client-Version", f.clientVersion)
	body, err := f.get(ctx, f.WatchURL(videoID)+"&pbj=1", h)
	if err != nil {
		return nil, fmt.Errorf("watch json: %w", err)
	}
	return body, nil
}

// PlayerScript downloads the player script at scriptURL.
func (f *Fetcher) PlayerScript(ctx context.Context, scriptURL string) (string, error) {
	body, err := f.get(ctx, scriptURL, nil)
	if err != nil {
		return "", fmt.Errorf("player script: %w", err)
	}
	return string(body), nil
}

// ScriptURL finds the player script reference in html and resolves it
// against the fetcher's origin.
func (f *Fetcher) ScriptURL(html string) (string, bool) {
	ref, ok := scriptRef(html)
	if !ok {
		return "", false
	}
	return joinURL(f.base, ref), true
}

func (f *Fetcher) get(ctx context.Context, rawURL string, extra http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	log := logger.WithComponent(logger.ComponentPage)
	log.Debug("Fetching", map[string]interface{}{"url": rawURL})

	resp, err := f.doer.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("Unexpected status", map[string]interface{}{"url": rawURL, "status": resp.StatusCode})
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	log.Debug("Fetched", map[string]interface{}{"url": rawURL, "bytes": len(body)})
	return body, nil
}

// readBody decompresses the response according to its Content-Encoding.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fr := flate.NewReader(resp.Body)
		defer fr.Close()
		reader = fr
	case "bzip2":
		reader = bzip2.NewReader(resp.Body)
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, errors.New("response body too large")
	}
	return body, nil
}
