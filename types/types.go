package types

// MediaStream describes one downloadable representation of audio and/or video.
//
// Optional attributes are pointers; nil means the source document did not
// carry the field.
type MediaStream struct {
	Itag     int
	URL      string
	MimeType string
	Codecs   string
	Bitrate  int64

	Width        *int
	Height       *int
	QualityLabel *string
	FPS          *int

	AudioQuality    *string
	AudioSampleRate *int64
	AudioChannels   *int

	ContentLength *int64
	// ContentLengthEstimated reports that ContentLength was derived from
	// duration and bitrate rather than declared.
	ContentLengthEstimated bool

	// SignatureCipher holds the raw cipher query string for streams whose URL
	// still needs deciphering. Empty for direct streams.
	SignatureCipher string

	IsDash      bool
	IsAudioOnly bool
	IsVideoOnly bool
}

// Pending reports whether the stream still needs signature deciphering.
func (s MediaStream) Pending() bool {
	return s.URL == "" && s.SignatureCipher != ""
}

// Muxed reports whether the stream carries both audio and video.
func (s MediaStream) Muxed() bool {
	return !s.IsDash
}

// HeightValue returns the height or 0 when unknown.
func (s MediaStream) HeightValue() int { return intValue(s.Height) }

// WidthValue returns the width or 0 when unknown.
func (s MediaStream) WidthValue() int { return intValue(s.Width) }

// FPSValue returns the frame rate or 0 when unknown.
func (s MediaStream) FPSValue() int { return intValue(s.FPS) }

// VideoDetails owns the muxed and adaptive stream lists of one video along
// with its identity metadata. Treat values as immutable once built.
type VideoDetails struct {
	ID            string
	Title         string
	Author        string
	ChannelID     string
	LengthSeconds int64
	Description   string
	Thumbnails    []string

	Formats         []MediaStream
	AdaptiveFormats []MediaStream
}

// WithStreams returns a copy of d carrying the given stream lists.
func (d *VideoDetails) WithStreams(formats, adaptive []MediaStream) *VideoDetails {
	out := *d
	out.Thumbnails = append([]string(nil), d.Thumbnails...)
	out.Formats = formats
	out.AdaptiveFormats = adaptive
	return &out
}

// StreamByItag looks up a stream in both lists, muxed first.
func (d *VideoDetails) StreamByItag(itag int) (MediaStream, bool) {
	for _, s := range d.Formats {
		if s.Itag == itag {
			return s, true
		}
	}
	for _, s := range d.AdaptiveFormats {
		if s.Itag == itag {
			return s, true
		}
	}
	return MediaStream{}, false
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// ResolveReport records how the pending streams of one VideoDetails were
// resolved. Failures never abort the remaining streams; they are listed here
// instead.
type ResolveReport struct {
	// ScriptURL identifies the player script used, empty when none was found.
	ScriptURL string
	// Deciphered lists itags whose signature was deciphered.
	Deciphered []int
	// Unverified lists itags that fell back to the URL embedded in the cipher
	// without a valid signature.
	Unverified []int
	// Failed maps itags that could not be resolved to the reason.
	Failed map[int]string
}

// OK reports whether every pending stream got a verified URL.
func (r *ResolveReport) OK() bool {
	return r == nil || (len(r.Failed) == 0 && len(r.Unverified) == 0)
}

// Fail records a failed stream.
func (r *ResolveReport) Fail(itag int, reason string) {
	if r.Failed == nil {
		r.Failed = make(map[int]string)
	}
	r.Failed[itag] = reason
}
