// Package envelope renders extraction results as the JSON success/error
// envelopes handed across process or runtime boundaries.
package envelope

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ytget/ytcore/internal/mimeext"
	"github.com/ytget/ytcore/internal/sanitize"
	"github.com/ytget/ytcore/types"
	"github.com/ytget/ytcore/youtube/formats"
)

// StreamURLErrorPrefix starts every failed stream URL envelope message.
const StreamURLErrorPrefix = "Error getting stream URL: "

// Response is the envelope. Exactly one of Data, URL or Error is set
// depending on the call that produced it.
type Response struct {
	Success           bool   `json:"success"`
	Data              any    `json:"data,omitempty"`
	URL               string `json:"url,omitempty"`
	SuggestedFilename string `json:"suggested_filename,omitempty"`
	Error             string `json:"error,omitempty"`
}

// Stream is the wire form of a media stream. Optional attributes encode
// as null when absent.
type Stream struct {
	Itag            int     `json:"itag"`
	URL             string  `json:"url"`
	MimeType        string  `json:"mimeType"`
	Codecs          *string `json:"codecs"`
	Bitrate         int64   `json:"bitrate"`
	Width           *int    `json:"width"`
	Height          *int    `json:"height"`
	QualityLabel    *string `json:"qualityLabel"`
	FPS             *int    `json:"fps"`
	AudioQuality    *string `json:"audioQuality"`
	AudioSampleRate *int64  `json:"audioSampleRate"`
	AudioChannels   *int    `json:"audioChannels"`
	ContentLength   *int64  `json:"contentLength"`
	IsDash          bool    `json:"isDash"`
	IsAudioOnly     bool    `json:"isAudioOnly"`
	IsVideoOnly     bool    `json:"isVideoOnly"`
}

// Video is the wire form of video details.
type Video struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	ChannelID       string   `json:"channelId"`
	LengthSeconds   int64    `json:"lengthSeconds"`
	Description     string   `json:"description"`
	Thumbnails      []string `json:"thumbnails"`
	Formats         []Stream `json:"formats"`
	AdaptiveFormats []Stream `json:"adaptiveFormats"`

	// Skipped lists streams dropped because their URL could not be resolved.
	Skipped []Skipped `json:"skipped,omitempty"`
	// Unverified lists itags whose URL lacks a deciphered signature.
	Unverified []int `json:"unverified,omitempty"`
}

// Skipped names a dropped stream and why.
type Skipped struct {
	Itag   int    `json:"itag"`
	Reason string `json:"reason"`
}

// OK wraps data in a success envelope.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Fail wraps err in an error envelope.
func Fail(err error) Response {
	if err == nil {
		err = fmt.Errorf("unknown error")
	}
	return Response{Error: err.Error()}
}

// Failf wraps err in an error envelope whose message starts with prefix.
func Failf(prefix string, err error) Response {
	r := Fail(err)
	r.Error = prefix + r.Error
	return r
}

// VideoInfo builds the success envelope for video details. A non-nil
// report adds the skipped and unverified streams.
func VideoInfo(d *types.VideoDetails, report *types.ResolveReport) Response {
	v := NewVideo(d)
	if report != nil {
		for itag, reason := range report.Failed {
			v.Skipped = append(v.Skipped, Skipped{Itag: itag, Reason: reason})
		}
		sort.Slice(v.Skipped, func(i, j int) bool { return v.Skipped[i].Itag < v.Skipped[j].Itag })
		v.Unverified = append(v.Unverified, report.Unverified...)
	}
	return OK(v)
}

// StreamURL builds the success envelope for one resolved stream. A stream
// without a URL yields an error envelope.
func StreamURL(d *types.VideoDetails, s types.MediaStream) Response {
	if s.URL == "" {
		return Failf(StreamURLErrorPrefix, fmt.Errorf("stream %d has no URL", s.Itag))
	}
	title := ""
	if d != nil {
		title = d.Title
	}
	return Response{
		Success:           true,
		URL:               s.URL,
		SuggestedFilename: SuggestedFilename(title, s),
	}
}

// SuggestedFilename derives "<title>_<quality><ext>" for a stream.
func SuggestedFilename(title string, s types.MediaStream) string {
	return sanitize.ToSafeFilename(title, formats.QualityLabel(s), mimeext.ExtFromMime(s.MimeType))
}

// NewVideo converts details to their wire form. Lists are never null.
func NewVideo(d *types.VideoDetails) Video {
	if d == nil {
		return Video{Thumbnails: []string{}, Formats: []Stream{}, AdaptiveFormats: []Stream{}}
	}
	thumbs := append([]string{}, d.Thumbnails...)
	return Video{
		ID:              d.ID,
		Title:           d.Title,
		Author:          d.Author,
		ChannelID:       d.ChannelID,
		LengthSeconds:   d.LengthSeconds,
		Description:     d.Description,
		Thumbnails:      thumbs,
		Formats:         newStreams(d.Formats),
		AdaptiveFormats: newStreams(d.AdaptiveFormats),
	}
}

func newStreams(in []types.MediaStream) []Stream {
	out := make([]Stream, 0, len(in))
	for _, s := range in {
		out = append(out, NewStream(s))
	}
	return out
}

// NewStream converts a stream to its wire form.
func NewStream(s types.MediaStream) Stream {
	var codecs *string
	if s.Codecs != "" {
		c := s.Codecs
		codecs = &c
	}
	return Stream{
		Itag:            s.Itag,
		URL:             s.URL,
		MimeType:        s.MimeType,
		Codecs:          codecs,
		Bitrate:         s.Bitrate,
		Width:           s.Width,
		Height:          s.Height,
		QualityLabel:    s.QualityLabel,
		FPS:             s.FPS,
		AudioQuality:    s.AudioQuality,
		AudioSampleRate: s.AudioSampleRate,
		AudioChannels:   s.AudioChannels,
		ContentLength:   s.ContentLength,
		IsDash:          s.IsDash,
		IsAudioOnly:     s.IsAudioOnly,
		IsVideoOnly:     s.IsVideoOnly,
	}
}

// JSON encodes the envelope. Encoding failures become an error envelope.
func (r Response) JSON() string {
	b, err := json.Marshal(r)
	if err != nil {
		b, _ = json.Marshal(Fail(fmt.Errorf("encode envelope: %w", err)))
	}
	return string(b)
}
