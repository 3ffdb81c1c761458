package ytcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/ytget/ytcore/errs"
	"github.com/ytget/ytcore/types"
	"github.com/ytget/ytcore/youtube/blob"
	"github.com/ytget/ytcore/youtube/formats"
)

// Source names where a player response came from.
type Source string

const (
	SourcePage     Source = "page"
	SourceFallback Source = "fallback"
)

// Document is a parsed but unresolved watch page. Streams carrying a
// signature cipher are still pending.
type Document struct {
	VideoID   string
	Details   *types.VideoDetails
	ScriptURL string
	Source    Source
}

// Fetch downloads and parses the watch page for videoURL. When the page has
// no embedded player response, the JSON form of the page is used instead.
// A response without streams is mapped to its playability error if any.
func (s *Session) Fetch(ctx context.Context, videoURL string) (*Document, error) {
	id, err := ExtractVideoID(videoURL)
	if err != nil {
		return nil, err
	}
	log := s.log().With(map[string]interface{}{"video_id": id})

	html, err := s.fetcher.WatchPage(ctx, id)
	if err != nil {
		return nil, err
	}
	doc := &Document{VideoID: id, Source: SourcePage}
	if scriptURL, ok := s.fetcher.ScriptURL(html); ok {
		doc.ScriptURL = scriptURL
	}

	var pr formats.PlayerResponse
	raw, err := blob.PlayerResponse(html)
	switch {
	case err == nil:
		doc.Details, pr, err = formats.ParseJSON([]byte(raw), id)
		if err != nil {
			return nil, err
		}
	case errors.Is(err, errs.ErrExtractionNotFound):
		log.Info("Player response not in page, trying JSON fallback")
		body, ferr := s.fetcher.FallbackJSON(ctx, id)
		if ferr != nil {
			return nil, fmt.Errorf("%w; fallback: %w", err, ferr)
		}
		doc.Details, pr, err = formats.ParseFallback(body, id)
		if err != nil {
			return nil, err
		}
		doc.Source = SourceFallback
	default:
		return nil, err
	}

	if len(doc.Details.Formats) == 0 && len(doc.Details.AdaptiveFormats) == 0 {
		if perr := errs.FromPlayability(pr.Playability()); perr != nil {
			status, reason := pr.Playability()
			log.Warn("Video not playable", map[string]interface{}{"status": status, "reason": reason})
			return nil, fmt.Errorf("%w: %s", perr, reason)
		}
	}

	log.Debug("Parsed player response", map[string]interface{}{
		"source":   string(doc.Source),
		"muxed":    len(doc.Details.Formats),
		"adaptive": len(doc.Details.AdaptiveFormats),
		"script":   doc.ScriptURL,
	})
	return doc, nil
}
