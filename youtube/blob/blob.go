// Package blob locates the player response object embedded in a watch page.
package blob

import (
	"strings"

	"github.com/ytget/ytcore/errs"
	"github.com/ytget/ytcore/internal/logger"
)

const (
	openBrace  = '{'
	closeBrace = '}'
)

// DefaultAnchors are the assignment spellings that precede the player
// response, in the order they are tried.
var DefaultAnchors = []string{
	"ytInitialPlayerResponse = {",
	"var ytInitialPlayerResponse = {",
}

// Extract returns the brace-balanced span that follows the first anchor found
// in doc. String literals and comments are not tracked, so a stray brace inside
// a JSON string can shift the end of the span.
//
// errs.ErrExtractionNotFound is returned when no anchor occurs or the braces
// never balance before the end of doc.
func Extract(doc string, anchors []string) (string, error) {
	for _, anchor := range anchors {
		at := strings.Index(doc, anchor)
		if at < 0 {
			continue
		}
		start := strings.IndexByte(doc[at:], openBrace)
		if start < 0 {
			return "", errs.ErrExtractionNotFound
		}
		start += at
		end, ok := matchBrace(doc, start)
		if !ok {
			logger.WithComponent(logger.ComponentBlob).Debug("Unbalanced player response", map[string]interface{}{"anchor": anchor})
			return "", errs.ErrExtractionNotFound
		}
		logger.WithComponent(logger.ComponentBlob).Trace("Found player response", map[string]interface{}{
			"anchor": anchor,
			"bytes":  end + 1 - start,
		})
		return doc[start : end+1], nil
	}
	return "", errs.ErrExtractionNotFound
}

// PlayerResponse extracts the player response object using DefaultAnchors.
func PlayerResponse(doc string) (string, error) {
	return Extract(doc, DefaultAnchors)
}

// matchBrace returns the index of the brace closing the one at start.
func matchBrace(doc string, start int) (int, bool) {
	depth := 0
	for i := start; i < len(doc); i++ {
		switch doc[i] {
		case openBrace:
			depth++
		case closeBrace:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
