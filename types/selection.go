package types

// StreamType restricts which kind of stream a selection accepts.
type StreamType int

const (
	StreamAny StreamType = iota
	StreamVideoOnly
	StreamAudioOnly
	StreamMuxed
)

var streamTypeNames = map[StreamType]string{
	StreamAny:       "any",
	StreamVideoOnly: "video",
	StreamAudioOnly: "audio",
	StreamMuxed:     "muxed",
}

func (t StreamType) String() string {
	if n, ok := streamTypeNames[t]; ok {
		return n
	}
	return "unknown"
}

// QualityPreference is the ordering used to pick a single stream.
type QualityPreference int

const (
	QualityNone QualityPreference = iota
	BestResolution
	WorstResolution
	BestBitrate
	WorstBitrate
	BestAudioBitrate
	WorstAudioBitrate
)

var qualityNames = map[QualityPreference]string{
	QualityNone:       "none",
	BestResolution:    "best_resolution",
	WorstResolution:   "worst_resolution",
	BestBitrate:       "best_bitrate",
	WorstBitrate:      "worst_bitrate",
	BestAudioBitrate:  "best_audio_bitrate",
	WorstAudioBitrate: "worst_audio_bitrate",
}

func (q QualityPreference) String() string {
	if n, ok := qualityNames[q]; ok {
		return n
	}
	return "unknown"
}

// FormatSelectionCriteria configures one filter/select query.
type FormatSelectionCriteria struct {
	StreamType   StreamType
	Quality      QualityPreference
	TargetHeight *int
	TargetFPS    *int
	// VideoCodec and AudioCodec are substrings matched against MediaStream.Codecs.
	VideoCodec string
	AudioCodec string
	// PreferAdaptive puts adaptive streams ahead of muxed ones in the
	// candidate pool.
	PreferAdaptive bool
}

// DefaultCriteria accepts any stream and prefers adaptive candidates.
func DefaultCriteria() FormatSelectionCriteria {
	return FormatSelectionCriteria{PreferAdaptive: true}
}
