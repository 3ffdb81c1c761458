package formats

import (
	"github.com/ytget/ytcore/types"
)

// FilterStreams keeps the streams matching every criterion, preserving input
// order. Quality and PreferAdaptive do not filter.
func FilterStreams(streams []types.MediaStream, c types.FormatSelectionCriteria) []types.MediaStream {
	out := make([]types.MediaStream, 0, len(streams))
	for _, s := range streams {
		if !matchesType(s, c.StreamType) {
			continue
		}
		if !matchesTarget(s.Height, c.TargetHeight) || !matchesTarget(s.FPS, c.TargetFPS) {
			continue
		}
		if !matchesCodecs(s, c.VideoCodec, c.AudioCodec) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SelectBestStream scans streams once and returns the best match under pref.
// The first stream wins any tie left after the ordering keys. QualityNone
// returns the first stream. The audio bitrate modes only consider streams
// flagged audio-only, muxed ones included, and report false when there are none.
func SelectBestStream(streams []types.MediaStream, pref types.QualityPreference) (types.MediaStream, bool) {
	var (
		best  types.MediaStream
		found bool
	)
	for _, s := range streams {
		if pref == types.BestAudioBitrate || pref == types.WorstAudioBitrate {
			if !matchesType(s, types.StreamAudioOnly) {
				continue
			}
		}
		if !found {
			best, found = s, true
			if pref == types.QualityNone {
				break
			}
			continue
		}
		if replaces(s, best, pref) {
			best = s
		}
	}
	return best, found
}

func replaces(candidate, current types.MediaStream, pref types.QualityPreference) bool {
	switch pref {
	case types.BestResolution:
		return betterByResolution(candidate, current)
	case types.WorstResolution:
		return worseByResolution(candidate, current)
	case types.BestBitrate, types.BestAudioBitrate:
		return candidate.Bitrate > current.Bitrate
	case types.WorstBitrate, types.WorstAudioBitrate:
		return candidate.Bitrate < current.Bitrate
	}
	return false
}

// AllStreams returns the candidate pool of d: adaptive streams then muxed
// streams when preferAdaptive is set, muxed first otherwise.
func AllStreams(d *types.VideoDetails, preferAdaptive bool) []types.MediaStream {
	if d == nil {
		return nil
	}
	first, second := d.Formats, d.AdaptiveFormats
	if preferAdaptive {
		first, second = second, first
	}
	out := make([]types.MediaStream, 0, len(first)+len(second))
	out = append(out, first...)
	return append(out, second...)
}

// Select runs the full query: pool, filter, then pick.
func Select(d *types.VideoDetails, c types.FormatSelectionCriteria) (types.MediaStream, bool) {
	return SelectBestStream(FilterStreams(AllStreams(d, c.PreferAdaptive), c), c.Quality)
}
