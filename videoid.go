package ytcore

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ytget/ytcore/errs"
)

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// pathPrefixes carry the id as the next path segment.
var pathPrefixes = []string{"/embed/", "/shorts/", "/live/", "/v/", "/e/"}

// ExtractVideoID returns the 11-character video id from a watch, short,
// embed or youtu.be URL. A bare id is returned as is.
func ExtractVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if videoIDRe.MatchString(raw) {
		return raw, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInvalidURL, err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	var id string
	switch {
	case host == "youtu.be":
		id = firstSegment(u.Path)
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com") || host == "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		for _, prefix := range pathPrefixes {
			if strings.HasPrefix(u.Path, prefix) {
				id = firstSegment(strings.TrimPrefix(u.Path, prefix))
				break
			}
		}
	default:
		return "", fmt.Errorf("%w: unsupported host %q", errs.ErrInvalidURL, u.Host)
	}

	if !videoIDRe.MatchString(id) {
		return "", fmt.Errorf("%w: no video id in %q", errs.ErrInvalidURL, raw)
	}
	return id, nil
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}
