// Package formats turns a player response into typed streams and selects
// among them.
package formats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ytget/ytcore/errs"
	"github.com/ytget/ytcore/internal/logger"
	"github.com/ytget/ytcore/types"
)

// Cipher string keys, current name first.
var cipherKeys = []string{"signatureCipher", "cipher"}

const (
	listMuxed    = "formats"
	listAdaptive = "adaptiveFormats"
)

// PlayerResponse is the decoded root object of a player response.
type PlayerResponse map[string]any

// Playability returns the playabilityStatus status and reason fields.
func (p PlayerResponse) Playability() (status, reason string) {
	ps := objectField(p, "playabilityStatus")
	return stringField(ps, "status"), stringField(ps, "reason")
}

// DecodeJSON decodes raw JSON into a value tree, keeping numbers as
// json.Number so large integers survive. Anything after the value other
// than whitespace is a parse error.
func DecodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrParse, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", errs.ErrParse)
	}
	return v, nil
}

// ParseJSON decodes a player response object and builds its VideoDetails.
func ParseJSON(raw []byte, videoID string) (*types.VideoDetails, PlayerResponse, error) {
	v, err := DecodeJSON(raw)
	if err != nil {
		return nil, nil, err
	}
	root, ok := v.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("%w: root is %T, want object", errs.ErrParse, v)
	}
	return ParsePlayerResponse(root, videoID), PlayerResponse(root), nil
}

// ParsePlayerResponse builds VideoDetails from a decoded player response.
// Missing metadata keys read as zero values; videoID is used when the
// response does not carry its own id.
func ParsePlayerResponse(root map[string]any, videoID string) *types.VideoDetails {
	d := &types.VideoDetails{ID: videoID}
	if vd := objectField(root, "videoDetails"); vd != nil {
		if id := stringField(vd, "videoId"); id != "" {
			d.ID = id
		}
		d.Title = stringField(vd, "title")
		d.Author = stringField(vd, "author")
		d.ChannelID = stringField(vd, "channelId")
		d.LengthSeconds = int64Field(vd, "lengthSeconds")
		d.Description = stringField(vd, "shortDescription")
		if thumbs, ok := objectField(vd, "thumbnail")["thumbnails"].([]any); ok {
			for _, t := range thumbs {
				if tm, ok := t.(map[string]any); ok {
					if u := stringField(tm, "url"); u != "" {
						d.Thumbnails = append(d.Thumbnails, u)
					}
				}
			}
		}
	}

	sd := objectField(root, "streamingData")
	d.Formats = parseList(sd[listMuxed], false, d.LengthSeconds)
	d.AdaptiveFormats = parseList(sd[listAdaptive], true, d.LengthSeconds)

	logger.WithComponent(logger.ComponentFormat).Debug("Parsed player response", map[string]interface{}{
		"video_id": d.ID,
		"muxed":    len(d.Formats),
		"adaptive": len(d.AdaptiveFormats),
	})
	return d
}

func parseList(v any, adaptive bool, lengthSeconds int64) []types.MediaStream {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	log := logger.WithComponent(logger.ComponentFormat)
	out := make([]types.MediaStream, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		s, ok := parseStream(m, adaptive, lengthSeconds)
		if !ok {
			log.Trace("Skipping stream entry", map[string]interface{}{"itag": m["itag"]})
			continue
		}
		out = append(out, s)
	}
	return out
}

func parseStream(m map[string]any, adaptive bool, lengthSeconds int64) (types.MediaStream, bool) {
	itag, ok := intField(m, "itag")
	if !ok {
		return types.MediaStream{}, false
	}
	s := types.MediaStream{
		Itag: itag,
		URL:  stringField(m, "url"),
	}
	if s.URL == "" {
		for _, key := range cipherKeys {
			if c := stringField(m, key); c != "" {
				s.SignatureCipher = c
				break
			}
		}
		if s.SignatureCipher == "" {
			return types.MediaStream{}, false
		}
	}

	s.MimeType = stringField(m, "mimeType")
	mime := ParseMimeType(s.MimeType)
	s.Codecs = mime.Codecs
	s.Bitrate = int64Field(m, "bitrate")

	s.Width = optInt(m, "width")
	s.Height = optInt(m, "height")
	s.FPS = optInt(m, "fps")
	s.QualityLabel = optString(m, "qualityLabel")
	s.AudioQuality = optString(m, "audioQuality")
	s.AudioSampleRate = optInt64(m, "audioSampleRate")
	s.AudioChannels = optInt(m, "audioChannels")

	if n, ok := Int64(m["contentLength"]); ok {
		s.ContentLength = &n
	} else if est, ok := estimateLength(s.Bitrate, m, lengthSeconds); ok {
		s.ContentLength = &est
		s.ContentLengthEstimated = true
	}

	s.IsDash = adaptive
	if adaptive {
		s.IsAudioOnly = mime.IsAudio()
		s.IsVideoOnly = !s.IsAudioOnly
	} else {
		s.IsAudioOnly = true
		s.IsVideoOnly = true
	}
	return s, true
}

// estimateLength derives a byte length as bitrate/8 * seconds, taking the
// duration from approxDurationMs and falling back to the video length.
func estimateLength(bitrate int64, m map[string]any, lengthSeconds int64) (int64, bool) {
	if bitrate <= 0 {
		return 0, false
	}
	seconds := lengthSeconds
	if ms, ok := Int64(m["approxDurationMs"]); ok && ms > 0 {
		seconds = ms / 1000
	}
	if seconds <= 0 {
		return 0, false
	}
	return bitrate / 8 * seconds, true
}
