package page

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/ytcore/errs"
)

func newTestFetcher(t *testing.T, h http.HandlerFunc) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewFetcher(&http.Client{Timeout: 5 * time.Second}, WithBaseURL(srv.URL+"/"))
}

func TestNewFetcherDefaults(t *testing.T) {
	f := NewFetcher(nil)
	require.NotNil(t, f.doer)
	assert.Equal(t, BaseURL, f.Base())
	assert.Equal(t, DefaultClientVersion, f.clientVersion)
	assert.Equal(t, BaseURL+"/watch?v=abc", f.WatchURL("abc"))

	f = NewFetcher(nil, WithClientVersion(""))
	assert.Equal(t, DefaultClientVersion, f.clientVersion)
}

func TestWatchPage(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/watch", r.URL.Path)
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("v"))
		assert.Equal(t, acceptLanguage, r.Header.Get("Accept-Language"))
		assert.Empty(t, r.Header.Get("X-YouTube-Client-Name"))
		_, _ = w.Write([]byte("<html>page</html>"))
	})

	html, err := f.WatchPage(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "<html>page</html>", html)
}

func TestFallbackJSONHeaders(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("pbj"))
		assert.Equal(t, "1", r.Header.Get("X-YouTube-Client-Name"))
		assert.Equal(t, "2.99", r.Header.Get("X-YouTube-Client-Version"))
		_, _ = w.Write([]byte(`[{"playerResponse":{}}]`))
	})
	WithClientVersion("2.99")(f)

	body, err := f.FallbackJSON(context.Background(), "abc")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"playerResponse":{}}]`, string(body))
}

func TestPlayerScriptEncodings(t *testing.T) {
	const script = "var a=function(a){a=a.split(\"\");return a.join(\"\")};"

	encode := map[string]func(*testing.T) []byte{
		"": func(*testing.T) []byte { return []byte(script) },
		"gzip": func(t *testing.T) []byte {
			var b bytes.Buffer
			w := gzip.NewWriter(&b)
			_, err := w.Write([]byte(script))
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return b.Bytes()
		},
		"br": func(t *testing.T) []byte {
			var b bytes.Buffer
			w := brotli.NewWriter(&b)
			_, err := w.Write([]byte(script))
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return b.Bytes()
		},
		"deflate": func(t *testing.T) []byte {
			var b bytes.Buffer
			w, err := flate.NewWriter(&b, flate.DefaultCompression)
			require.NoError(t, err)
			_, err = w.Write([]byte(script))
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return b.Bytes()
		},
	}

	for enc, fn := range encode {
		t.Run("encoding="+enc, func(t *testing.T) {
			payload := fn(t)
			f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
				if enc != "" {
					w.Header().Set("Content-Encoding", enc)
				}
				_, _ = w.Write(payload)
			})

			got, err := f.PlayerScript(context.Background(), f.Base()+"/s/player/x/base.js")
			require.NoError(t, err)
			assert.Equal(t, script, got)
		})
	}
}

func TestGzipCorruptBody(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write([]byte("not gzip"))
	})

	_, err := f.WatchPage(context.Background(), "abc")
	require.Error(t, err)
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		rateLimited bool
	}{
		{"not found", http.StatusNotFound, false},
		{"too many requests", http.StatusTooManyRequests, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := f.WatchPage(context.Background(), "abc")
			require.Error(t, err)

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.rateLimited, errors.Is(err, errs.ErrRateLimited))
		})
	}
}

func TestCanceledContext(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("late"))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.WatchPage(ctx, "abc")
	require.ErrorIs(t, err, context.Canceled)
}

func TestFetcherScriptURL(t *testing.T) {
	f := NewFetcher(nil, WithBaseURL("http://127.0.0.1:9999"))

	got, ok := f.ScriptURL(`{"jsUrl":"\/s\/player\/abc\/base.js"}`)
	require.True(t, ok)
	assert.Equal(t, "http://127.0.0.1:9999/s/player/abc/base.js", got)

	_, ok = f.ScriptURL("<html></html>")
	assert.False(t, ok)
}
