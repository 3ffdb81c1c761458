package formats

import "strings"

// Mime is a parsed container type such as `video/mp4; codecs="avc1.4d401f"`.
type Mime struct {
	Type    string
	Subtype string
	Codecs  string
}

// ParseMimeType splits a mime string into its media type, subtype and the
// quoted codecs list. Missing parts are left empty.
func ParseMimeType(mime string) Mime {
	var m Mime
	base := mime
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSpace(base)
	if typ, sub, ok := strings.Cut(base, "/"); ok {
		m.Type = strings.ToLower(typ)
		m.Subtype = strings.ToLower(sub)
	} else {
		m.Type = strings.ToLower(base)
	}

	const codecsKey = `codecs="`
	if i := strings.Index(mime, codecsKey); i >= 0 {
		rest := mime[i+len(codecsKey):]
		if j := strings.IndexByte(rest, '"'); j >= 0 {
			m.Codecs = rest[:j]
		}
	}
	return m
}

// IsAudio reports whether the primary media type is audio.
func (m Mime) IsAudio() bool { return m.Type == "audio" }

// IsVideo reports whether the primary media type is video.
func (m Mime) IsVideo() bool { return m.Type == "video" }

// Base returns "type/subtype" without parameters.
func (m Mime) Base() string {
	if m.Subtype == "" {
		return m.Type
	}
	return m.Type + "/" + m.Subtype
}
