package page

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// scriptURLPatterns find the player script path in page config, in order.
var scriptURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"jsUrl":"([^"]+)"`),
	regexp.MustCompile(`"PLAYER_JS_URL":"([^"]+)"`),
}

// PlayerScriptURL finds the player script referenced by a watch page and
// returns its absolute URL on BaseURL.
func PlayerScriptURL(html string) (string, bool) {
	ref, ok := scriptRef(html)
	if !ok {
		return "", false
	}
	return joinURL(BaseURL, ref), true
}

func scriptRef(html string) (string, bool) {
	for _, re := range scriptURLPatterns {
		if m := re.FindStringSubmatch(html); m != nil && m[1] != "" {
			return strings.ReplaceAll(m[1], `\/`, "/"), true
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	var ref string
	doc.Find("script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		path := src
		if i := strings.IndexAny(path, "?#"); i >= 0 {
			path = path[:i]
		}
		if strings.HasSuffix(path, "/base.js") || path == "base.js" {
			ref = src
			return false
		}
		return true
	})
	return ref, ref != ""
}

func joinURL(base, ref string) string {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(ref, "/"):
		return base + ref
	default:
		return base + "/" + ref
	}
}
