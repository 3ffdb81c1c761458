package formats

import (
	"strings"

	"github.com/ytget/ytcore/types"
)

// matchesType checks the stream against the requested stream type.
// Muxed streams carry both media flags, so they match the video-only and
// audio-only types as well as StreamMuxed.
func matchesType(s types.MediaStream, want types.StreamType) bool {
	switch want {
	case types.StreamAny:
		return true
	case types.StreamMuxed:
		return !s.IsDash
	case types.StreamVideoOnly:
		return s.IsVideoOnly
	case types.StreamAudioOnly:
		return s.IsAudioOnly
	}
	return false
}

// matchesTarget checks an optional exact value. A nil target passes.
func matchesTarget(got *int, target *int) bool {
	if target == nil {
		return true
	}
	return got != nil && *got == *target
}

// matchesCodecs applies the codec preference for the media the stream carries.
// Muxed streams must satisfy both preferences when set.
func matchesCodecs(s types.MediaStream, videoCodec, audioCodec string) bool {
	carriesVideo := !s.IsDash || s.IsVideoOnly
	carriesAudio := !s.IsDash || s.IsAudioOnly
	if videoCodec != "" && carriesVideo && !strings.Contains(s.Codecs, videoCodec) {
		return false
	}
	if audioCodec != "" && carriesAudio && !strings.Contains(s.Codecs, audioCodec) {
		return false
	}
	return true
}

// betterByResolution compares two streams and returns true when candidate is
// strictly better than current using height, then fps, then bitrate.
func betterByResolution(candidate, current types.MediaStream) bool {
	if candidate.HeightValue() != current.HeightValue() {
		return candidate.HeightValue() > current.HeightValue()
	}
	if candidate.FPSValue() != current.FPSValue() {
		return candidate.FPSValue() > current.FPSValue()
	}
	return candidate.Bitrate > current.Bitrate
}

// worseByResolution is the mirror of betterByResolution.
func worseByResolution(candidate, current types.MediaStream) bool {
	if candidate.HeightValue() != current.HeightValue() {
		return candidate.HeightValue() < current.HeightValue()
	}
	if candidate.FPSValue() != current.FPSValue() {
		return candidate.FPSValue() < current.FPSValue()
	}
	return candidate.Bitrate < current.Bitrate
}
