package formats

import (
	"strconv"

	"github.com/ytget/ytcore/types"
)

// QualityLabel returns a short display label for s: the declared quality
// label, else the height, else the audio quality of audio-only streams, else
// the itag.
func QualityLabel(s types.MediaStream) string {
	if s.QualityLabel != nil && *s.QualityLabel != "" {
		return *s.QualityLabel
	}
	if s.Height != nil {
		label := strconv.Itoa(*s.Height) + "p"
		if fps := s.FPSValue(); fps > 30 {
			label += strconv.Itoa(fps)
		}
		return label
	}
	if s.IsAudioOnly && s.AudioQuality != nil && *s.AudioQuality != "" {
		return *s.AudioQuality
	}
	return "itag" + strconv.Itoa(s.Itag)
}
