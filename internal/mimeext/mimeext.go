// Package mimeext maps stream MIME types to file extensions.
package mimeext

import (
	"strings"
)

const (
	// DefaultExt is the extension used when the MIME type is unknown or empty.
	DefaultExt = ".bin"

	ExtMP4  = ".mp4"
	ExtM4A  = ".m4a"
	ExtWebM = ".webm"
	ExtMP3  = ".mp3"
	ExtOGG  = ".ogg"
	ExtMKV  = ".mkv"
	ExtWAV  = ".wav"

	MimeVideoMP4  = "video/mp4"
	MimeAudioMP4  = "audio/mp4"
	MimeVideoWebM = "video/webm"
	MimeAudioWebM = "audio/webm"
	MimeAudioMPEG = "audio/mpeg"
	MimeAudioOGG  = "audio/ogg"
	MimeVideoMKV  = "video/x-matroska"
	MimeAudioWAV  = "audio/wav"
)

// ExtFromMime returns the file extension, including the dot, for a MIME type.
// Parameters such as codecs are ignored. Unknown types map to DefaultExt.
func ExtFromMime(mime string) string {
	base := strings.TrimSpace(mime)
	if i := strings.Index(base, ";"); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	switch strings.ToLower(base) {
	case MimeVideoMP4:
		return ExtMP4
	case MimeAudioMP4:
		return ExtM4A
	case MimeVideoWebM, MimeAudioWebM:
		return ExtWebM
	case MimeAudioMPEG:
		return ExtMP3
	case MimeAudioOGG:
		return ExtOGG
	case MimeVideoMKV:
		return ExtMKV
	case MimeAudioWAV, "audio/x-wav":
		return ExtWAV
	}
	return DefaultExt
}
