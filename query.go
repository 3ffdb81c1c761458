package ytcore

import (
	"context"
	"fmt"

	"github.com/ytget/ytcore/errs"
	"github.com/ytget/ytcore/types"
	"github.com/ytget/ytcore/youtube/envelope"
	"github.com/ytget/ytcore/youtube/formats"
)

// QueryResult is the outcome of a filter query. An empty selection is a
// valid result with Found false.
type QueryResult struct {
	Details  *types.VideoDetails
	Report   *types.ResolveReport
	Criteria types.FormatSelectionCriteria
	// Ignored holds diagnostics for spec entries that were skipped.
	Ignored []string
	Stream  types.MediaStream
	Found   bool
}

// Query resolves videoURL and picks one stream according to a compact filter
// spec such as "res:720,type:muxed" or "abr:best".
func (s *Session) Query(ctx context.Context, videoURL, spec string) (*QueryResult, error) {
	criteria, ignored := formats.ParseFilterSpec(spec)
	criteria.PreferAdaptive = s.preferAdaptive
	if len(ignored) > 0 {
		s.log().Warn("Ignored filter entries", map[string]interface{}{"spec": spec, "ignored": ignored})
	}

	details, report, err := s.VideoDetails(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	res := &QueryResult{
		Details:  details,
		Report:   report,
		Criteria: criteria,
		Ignored:  ignored,
	}
	res.Stream, res.Found = formats.Select(details, criteria)
	return res, nil
}

// VideoInfoJSON returns the video details envelope for videoURL.
func (s *Session) VideoInfoJSON(ctx context.Context, videoURL string) string {
	details, report, err := s.VideoDetails(ctx, videoURL)
	if err != nil {
		return envelope.Fail(err).JSON()
	}
	return envelope.VideoInfo(details, report).JSON()
}

// StreamURLJSON returns the envelope holding the resolved URL and a
// suggested filename for the stream with the given itag.
func (s *Session) StreamURLJSON(ctx context.Context, videoURL string, itag int) string {
	details, report, err := s.VideoDetails(ctx, videoURL)
	if err != nil {
		return envelope.Failf(envelope.StreamURLErrorPrefix, err).JSON()
	}
	if reason, failed := report.Failed[itag]; failed {
		return envelope.Failf(envelope.StreamURLErrorPrefix, fmt.Errorf("itag %d: %s", itag, reason)).JSON()
	}
	st, ok := details.StreamByItag(itag)
	if !ok {
		return envelope.Failf(envelope.StreamURLErrorPrefix, fmt.Errorf("%w: itag %d", errs.ErrStreamNotFound, itag)).JSON()
	}
	return envelope.StreamURL(details, st).JSON()
}
