// Package sanitize builds filesystem-safe filename components.
package sanitize

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultName replaces a component that sanitizes to nothing.
	DefaultName = "download"
	// TitleLength bounds the title part of a suggested filename.
	TitleLength = 60
	// LabelLength bounds the quality label part of a suggested filename.
	LabelLength = 30

	unsafeChars = `<>:"/\|?*`
	edgeChars   = " \t\n\r\f\v."
)

// Component replaces characters that are unsafe in filenames with '_',
// trims whitespace and dots from both ends and truncates the result to at
// most maxLen bytes without splitting a UTF-8 sequence.
func Component(s string, maxLen int) string {
	out := strings.Map(func(r rune) rune {
		if r < 32 || strings.ContainsRune(unsafeChars, r) {
			return '_'
		}
		return r
	}, s)
	out = strings.Trim(out, edgeChars)
	if maxLen > 0 && len(out) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = strings.TrimRight(out[:cut], edgeChars)
	}
	if out == "" {
		return DefaultName
	}
	return out
}

// ToSafeFilename joins a title and quality label into "<title>_<label><ext>".
// ext must include its leading dot.
func ToSafeFilename(title, label, ext string) string {
	return Component(title, TitleLength) + "_" + Component(label, LabelLength) + ext
}
