package ytcore

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ytget/ytcore/youtube/page"
)

const testVideoID = "dQw4w9WgXcQ"

const testPlayerResponse = `{
 "playabilityStatus": {"status": "OK"},
 "videoDetails": {
  "videoId": "dQw4w9WgXcQ",
  "title": "Test Video",
  "author": "Tester",
  "channelId": "UC1",
  "lengthSeconds": "10",
  "shortDescription": "desc",
  "thumbnail": {"thumbnails": [{"url": "https://i.example/1.jpg"}]}
 },
 "streamingData": {
  "formats": [
   {"itag": 18, "url": "https://media.example/v?itag=18", "mimeType": "video/mp4; codecs=\"avc1.42001E, mp4a.40.2\"",
    "bitrate": 500000, "width": 640, "height": 360, "qualityLabel": "360p", "fps": 30}
  ],
  "adaptiveFormats": [
   {"itag": 137, "signatureCipher": "s=ABCDEFG&sp=sig&url=https%3A%2F%2Fmedia.example%2Fv%3Fitag%3D137",
    "mimeType": "video/mp4; codecs=\"avc1.640028\"", "bitrate": 4000000, "width": 1920, "height": 1080, "qualityLabel": "1080p", "fps": 30},
   {"itag": 140, "signatureCipher": "s=HIJKLMN&url=https%3A%2F%2Fmedia.example%2Fa%3Fitag%3D140",
    "mimeType": "audio/mp4; codecs=\"mp4a.40.2\"", "bitrate": 130000, "audioQuality": "AUDIO_QUALITY_MEDIUM"},
   {"itag": 251, "signatureCipher": "sp=sig&url=https%3A%2F%2Fmedia.example%2Fa%3Fitag%3D251",
    "mimeType": "audio/webm; codecs=\"opus\"", "bitrate": 160000}
  ]
 }
}`

const (
	want137 = "https://media.example/v?itag=137&sig=DEFG"
	want140 = "https://media.example/a?itag=140&signature=KLMN"
)

// fakeSite serves a watch page, its JSON form and a player script.
type fakeSite struct {
	// html is served for the watch page; use watchHTML to build one.
	html string
	// pbj is served for the JSON form of the watch page.
	pbj string
	// script is served at /s/player/test/base.js.
	script string

	pageHits   atomic.Int32
	pbjHits    atomic.Int32
	scriptHits atomic.Int32
	pbjHeaders atomic.Value
}

func watchHTML(playerResponse string, withScript bool) string {
	var b strings.Builder
	b.WriteString("<html><head>")
	if withScript {
		b.WriteString(`<script>ytcfg.set({"jsUrl":"\/s\/player\/test\/base.js"});</script>`)
	}
	b.WriteString("</head><body>")
	if playerResponse != "" {
		b.WriteString("<script>var ytInitialPlayerResponse = " + playerResponse + ";</script>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("youtube", "cipher", "testdata", name))
	require.NoError(t, err)
	return string(b)
}

func (f *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/watch":
		if r.URL.Query().Get("pbj") == "1" {
			f.pbjHits.Add(1)
			f.pbjHeaders.Store(r.Header.Clone())
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(f.pbj))
			return
		}
		f.pageHits.Add(1)
		_, _ = w.Write([]byte(f.html))
	case "/s/player/test/base.js":
		f.scriptHits.Add(1)
		if f.script == "" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(f.script))
	default:
		http.NotFound(w, r)
	}
}

// newTestSession starts site and returns a Session pointed at it. The
// server and idle connections are closed on cleanup.
func newTestSession(t *testing.T, site *fakeSite) *Session {
	t.Helper()
	srv := httptest.NewServer(site)
	tr := &http.Transport{}
	t.Cleanup(func() {
		tr.CloseIdleConnections()
		srv.Close()
	})
	fetcher := page.NewFetcher(&http.Client{Transport: tr}, page.WithBaseURL(srv.URL))
	return New().WithFetcher(fetcher)
}

func watchURL() string {
	return "https://www.youtube.com/watch?v=" + testVideoID
}
