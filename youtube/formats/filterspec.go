package formats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ytget/ytcore/types"
)

const (
	specBest  = "best"
	specWorst = "worst"
)

// ParseFilterSpec reads a compact comma-separated `key:value` selection
// string such as "res:best,type:video,vcodec:avc1". Unknown keys and
// malformed values are skipped and reported as diagnostics; they never fail
// the parse. Later keys override earlier ones.
func ParseFilterSpec(spec string) (types.FormatSelectionCriteria, []string) {
	c := types.DefaultCriteria()
	var diags []string
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			diags = append(diags, fmt.Sprintf("ignoring %q: want key:value", part))
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if msg := applySpec(&c, key, value); msg != "" {
			diags = append(diags, msg)
		}
	}
	return c, diags
}

func applySpec(c *types.FormatSelectionCriteria, key, value string) string {
	lower := strings.ToLower(value)
	switch key {
	case "res":
		switch lower {
		case specBest:
			c.Quality = types.BestResolution
		case specWorst:
			c.Quality = types.WorstResolution
		default:
			h, err := strconv.Atoi(strings.TrimSuffix(lower, "p"))
			if err != nil || h <= 0 {
				return fmt.Sprintf("ignoring res %q: want best, worst or a height", value)
			}
			c.TargetHeight = &h
		}
	case "bitrate":
		switch lower {
		case specBest:
			c.Quality = types.BestBitrate
		case specWorst:
			c.Quality = types.WorstBitrate
		default:
			return fmt.Sprintf("ignoring bitrate %q: want best or worst", value)
		}
	case "audio_br", "abr":
		switch lower {
		case specBest:
			c.Quality = types.BestAudioBitrate
		case specWorst:
			c.Quality = types.WorstAudioBitrate
		default:
			return fmt.Sprintf("ignoring %s %q: want best or worst", key, value)
		}
	case "type":
		t, ok := streamTypes[lower]
		if !ok {
			return fmt.Sprintf("ignoring type %q: want any, video, audio or muxed", value)
		}
		c.StreamType = t
	case "fps":
		fps, err := strconv.Atoi(lower)
		if err != nil || fps <= 0 {
			return fmt.Sprintf("ignoring fps %q: want a positive number", value)
		}
		c.TargetFPS = &fps
	case "vcodec":
		c.VideoCodec = value
	case "acodec":
		c.AudioCodec = value
	default:
		return fmt.Sprintf("ignoring unknown key %q", key)
	}
	return ""
}

var streamTypes = map[string]types.StreamType{
	"any":        types.StreamAny,
	"video":      types.StreamVideoOnly,
	"video_only": types.StreamVideoOnly,
	"audio":      types.StreamAudioOnly,
	"audio_only": types.StreamAudioOnly,
	"muxed":      types.StreamMuxed,
	"combined":   types.StreamMuxed,
}
