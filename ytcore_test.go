package ytcore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ytget/ytcore/errs"
	"github.com/ytget/ytcore/internal/config"
	"github.com/ytget/ytcore/types"
	"github.com/ytget/ytcore/youtube/page"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestVideoDetailsResolvesCiphers(t *testing.T) {
	site := &fakeSite{
		html:   watchHTML(testPlayerResponse, true),
		script: readFixture(t, "player_helper.js"),
	}
	s := newTestSession(t, site)

	d, report, err := s.VideoDetails(context.Background(), watchURL())
	require.NoError(t, err)

	assert.Equal(t, "Test Video", d.Title)
	assert.Equal(t, []string{"https://i.example/1.jpg"}, d.Thumbnails)
	require.Len(t, d.Formats, 1)
	assert.Equal(t, "https://media.example/v?itag=18", d.Formats[0].URL)

	got := map[int]string{}
	for _, st := range d.AdaptiveFormats {
		assert.False(t, st.Pending())
		got[st.Itag] = st.URL
	}
	if diff := cmp.Diff(map[int]string{137: want137, 140: want140}, got); diff != "" {
		t.Fatalf("adaptive URLs mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []int{137, 140}, report.Deciphered)
	assert.Empty(t, report.Unverified)
	require.Contains(t, report.Failed, 251)
	assert.Contains(t, report.Failed[251], "SIGNATURE_CIPHER_MALFORMED")
	assert.Contains(t, report.ScriptURL, "/s/player/test/base.js")
	assert.Equal(t, int32(1), site.scriptHits.Load())
	assert.Equal(t, int32(0), site.pbjHits.Load())
}

func TestFetchLeavesStreamsPending(t *testing.T) {
	site := &fakeSite{html: watchHTML(testPlayerResponse, true)}
	s := newTestSession(t, site)

	doc, err := s.Fetch(context.Background(), watchURL())
	require.NoError(t, err)
	assert.Equal(t, SourcePage, doc.Source)
	assert.Equal(t, testVideoID, doc.VideoID)
	assert.Contains(t, doc.ScriptURL, "/s/player/test/base.js")
	require.Len(t, doc.Details.AdaptiveFormats, 3)
	for _, st := range doc.Details.AdaptiveFormats {
		assert.True(t, st.Pending(), "itag %d", st.Itag)
	}
	assert.Equal(t, int32(0), site.scriptHits.Load())
}

func TestScriptLoadedOncePerSession(t *testing.T) {
	site := &fakeSite{
		html:   watchHTML(testPlayerResponse, true),
		script: readFixture(t, "player_helper.js"),
	}
	s := newTestSession(t, site).WithConcurrency(8)

	var wg sync.WaitGroup
	errCh := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, _, err := s.VideoDetails(context.Background(), watchURL())
			if err != nil {
				errCh <- err
				return
			}
			if st, ok := d.StreamByItag(137); !ok || st.URL != want137 {
				errCh <- errors.New("itag 137 not deciphered")
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatal(err)
	}

	assert.Equal(t, int32(1), site.scriptHits.Load())
	assert.Equal(t, 1, s.cache.Len())
}

func TestFallbackJSON(t *testing.T) {
	pbj := `[{"page":"watch"},{"playerResponse":` + testPlayerResponse + `}]`
	site := &fakeSite{
		html:   watchHTML("", true),
		pbj:    pbj,
		script: readFixture(t, "player_helper.js"),
	}
	s := newTestSession(t, site)

	doc, err := s.Fetch(context.Background(), watchURL())
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, doc.Source)
	assert.Equal(t, "Test Video", doc.Details.Title)

	h := site.pbjHeaders.Load().(http.Header)
	assert.Equal(t, "1", h.Get("X-YouTube-Client-Name"))
	assert.Equal(t, page.DefaultClientVersion, h.Get("X-YouTube-Client-Version"))

	d, report, err := s.Resolve(context.Background(), doc)
	require.NoError(t, err)
	st, ok := d.StreamByItag(140)
	require.True(t, ok)
	assert.Equal(t, want140, st.URL)
	assert.Len(t, report.Deciphered, 2)
}

func TestFallbackWithoutPlayerResponse(t *testing.T) {
	site := &fakeSite{html: watchHTML("", false), pbj: `{"page":"watch"}`}
	s := newTestSession(t, site)

	_, err := s.Fetch(context.Background(), watchURL())
	require.ErrorIs(t, err, errs.ErrExtractionNotFound)
}

func TestNoPlayerScriptUsesEmbeddedURL(t *testing.T) {
	site := &fakeSite{html: watchHTML(testPlayerResponse, false)}
	s := newTestSession(t, site)

	d, report, err := s.VideoDetails(context.Background(), watchURL())
	require.NoError(t, err)

	st, ok := d.StreamByItag(137)
	require.True(t, ok)
	assert.Equal(t, "https://media.example/v?itag=137", st.URL)
	assert.Equal(t, []int{137, 140}, report.Unverified)
	assert.Empty(t, report.Deciphered)
	assert.Contains(t, report.Failed, 251)
	assert.False(t, report.OK())
	assert.Equal(t, int32(0), site.scriptHits.Load())
}

func TestUnusableScriptIsRememberedPerVersion(t *testing.T) {
	site := &fakeSite{
		html:   watchHTML(testPlayerResponse, true),
		script: readFixture(t, "player_missing.js"),
	}
	s := newTestSession(t, site)

	_, report, err := s.VideoDetails(context.Background(), watchURL())
	require.NoError(t, err)
	assert.Equal(t, []int{137, 140}, report.Unverified)
	assert.Equal(t, 0, s.cache.Len())

	_, report, err = s.VideoDetails(context.Background(), watchURL())
	require.NoError(t, err)
	assert.Equal(t, []int{137, 140}, report.Unverified)
	assert.Equal(t, int32(1), site.scriptHits.Load(), "a script without a decipher function is fetched once")

	s.cache.Forget(report.ScriptURL)
	_, _, err = s.VideoDetails(context.Background(), watchURL())
	require.NoError(t, err)
	assert.Equal(t, int32(2), site.scriptHits.Load())
}

func TestPlayabilityErrors(t *testing.T) {
	tests := []struct {
		name   string
		status string
		reason string
		want   error
	}{
		{"age", "LOGIN_REQUIRED", "Sign in to confirm your age", errs.ErrAgeRestricted},
		{"private", "LOGIN_REQUIRED", "This video is private", errs.ErrPrivate},
		{"geo", "ERROR", "The uploader has not made this video available in your country", errs.ErrGeoBlocked},
		{"unplayable", "UNPLAYABLE", "Video unavailable", errs.ErrVideoUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := `{"playabilityStatus":{"status":"` + tt.status + `","reason":"` + tt.reason + `"},"videoDetails":{"videoId":"dQw4w9WgXcQ"}}`
			s := newTestSession(t, &fakeSite{html: watchHTML(pr, true)})

			_, err := s.Fetch(context.Background(), watchURL())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPlayableWithoutStreams(t *testing.T) {
	pr := `{"playabilityStatus":{"status":"OK"},"videoDetails":{"videoId":"dQw4w9WgXcQ","title":"Live"}}`
	s := newTestSession(t, &fakeSite{html: watchHTML(pr, false)})

	d, report, err := s.VideoDetails(context.Background(), watchURL())
	require.NoError(t, err)
	assert.Equal(t, "Live", d.Title)
	assert.Empty(t, d.Formats)
	assert.True(t, report.OK())
}

func TestFetchErrors(t *testing.T) {
	s := New()
	_, err := s.Fetch(context.Background(), "https://example.com/watch?v="+testVideoID)
	require.ErrorIs(t, err, errs.ErrInvalidURL)

	site := &fakeSite{html: watchHTML(testPlayerResponse, true)}
	s = newTestSession(t, site)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Fetch(ctx, watchURL())
	require.ErrorIs(t, err, context.Canceled)
}

func TestQuery(t *testing.T) {
	site := &fakeSite{
		html:   watchHTML(testPlayerResponse, true),
		script: readFixture(t, "player_helper.js"),
	}
	s := newTestSession(t, site)
	ctx := context.Background()

	tests := []struct {
		spec     string
		wantItag int
		found    bool
		ignored  int
	}{
		{"res:best,type:video_only", 137, true, 0},
		// Audio-only streams have no height and rank lowest.
		{"res:worst", 140, true, 0},
		// The muxed stream carries audio at a higher bitrate.
		{"abr:best", 18, true, 0},
		{"abr:worst", 140, true, 0},
		{"type:muxed", 18, true, 0},
		{"res:1080,vcodec:avc1", 137, true, 0},
		{"res:4320", 0, false, 0},
		{"res:best,color:blue,fps", 137, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			res, err := s.Query(ctx, watchURL(), tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.found, res.Found)
			assert.Len(t, res.Ignored, tt.ignored)
			if tt.found {
				assert.Equal(t, tt.wantItag, res.Stream.Itag)
				assert.NotEmpty(t, res.Stream.URL)
			}
		})
	}
}

func TestQueryPreferMuxed(t *testing.T) {
	site := &fakeSite{
		html:   watchHTML(testPlayerResponse, true),
		script: readFixture(t, "player_helper.js"),
	}
	s := newTestSession(t, site).WithPreferAdaptive(false)

	res, err := s.Query(context.Background(), watchURL(), "")
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, 18, res.Stream.Itag)
	assert.False(t, res.Criteria.PreferAdaptive)
}

func TestVideoInfoJSON(t *testing.T) {
	site := &fakeSite{
		html:   watchHTML(testPlayerResponse, true),
		script: readFixture(t, "player_helper.js"),
	}
	s := newTestSession(t, site)

	var got struct {
		Success bool `json:"success"`
		Data    struct {
			ID              string `json:"id"`
			AdaptiveFormats []struct {
				Itag int    `json:"itag"`
				URL  string `json:"url"`
			} `json:"adaptiveFormats"`
			Skipped []struct {
				Itag int `json:"itag"`
			} `json:"skipped"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(s.VideoInfoJSON(context.Background(), watchURL())), &got))
	assert.True(t, got.Success)
	assert.Equal(t, testVideoID, got.Data.ID)
	require.Len(t, got.Data.AdaptiveFormats, 2)
	assert.Equal(t, want137, got.Data.AdaptiveFormats[0].URL)
	require.Len(t, got.Data.Skipped, 1)
	assert.Equal(t, 251, got.Data.Skipped[0].Itag)

	out := s.VideoInfoJSON(context.Background(), "not a video")
	assert.Contains(t, out, `"success":false`)
	assert.Contains(t, out, errs.ErrInvalidURL.Error())
}

func TestStreamURLJSON(t *testing.T) {
	site := &fakeSite{
		html:   watchHTML(testPlayerResponse, true),
		script: readFixture(t, "player_helper.js"),
	}
	s := newTestSession(t, site)
	ctx := context.Background()

	assert.JSONEq(t, `{"success":true,"url":"`+want137+`","suggested_filename":"Test Video_1080p.mp4"}`,
		s.StreamURLJSON(ctx, watchURL(), 137))

	var failed struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(s.StreamURLJSON(ctx, watchURL(), 251)), &failed))
	assert.False(t, failed.Success)
	assert.Contains(t, failed.Error, "Error getting stream URL: itag 251")

	require.NoError(t, json.Unmarshal([]byte(s.StreamURLJSON(ctx, watchURL(), 999)), &failed))
	assert.Contains(t, failed.Error, errs.ErrStreamNotFound.Error())
}

func TestNewFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		JSEngine:       "goja",
		CacheDir:       dir,
		LogLevel:       "info",
		LogFormat:      "text",
		PreferAdaptive: true,
	}
	reg := prometheus.NewRegistry()
	s, err := NewFromConfig(cfg, reg)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())

	site := &fakeSite{
		html:   watchHTML(testPlayerResponse, true),
		script: readFixture(t, "player_helper.js"),
	}
	fs := newTestSession(t, site)
	s.WithFetcher(fs.fetcher)

	d, _, err := s.VideoDetails(context.Background(), watchURL())
	require.NoError(t, err)
	st, ok := d.StreamByItag(140)
	require.True(t, ok)
	assert.Equal(t, want140, st.URL)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	_, err = NewFromConfig(config.Config{JSEngine: "v8"}, nil)
	require.Error(t, err)
}

func TestSessionSetters(t *testing.T) {
	s := New()
	assert.Equal(t, DefaultConcurrency, s.concurrency)
	s.WithConcurrency(0).WithFetcher(nil).WithCache(nil)
	assert.Equal(t, 1, s.concurrency)
	assert.NotNil(t, s.fetcher)
	assert.NotNil(t, s.cache)
	assert.NotEqual(t, New().ID(), s.ID())
}

func TestResolveWithoutPending(t *testing.T) {
	s := New()
	doc := &Document{Details: &types.VideoDetails{
		Formats: []types.MediaStream{{Itag: 18, URL: "https://media.example/v"}},
	}}
	d, report, err := s.Resolve(context.Background(), doc)
	require.NoError(t, err)
	assert.Same(t, doc.Details, d)
	assert.True(t, report.OK())
}
