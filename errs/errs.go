package errs

import (
	"errors"
	"strings"
)

var (
	// ErrExtractionNotFound indicates the embedded player response could not be
	// located in a document. Callers should try an alternate source.
	ErrExtractionNotFound = errors.New("player response not found")
	// ErrParse indicates malformed JSON at the root of a player response.
	ErrParse = errors.New("player response parse failed")
	// ErrLocatorNotFound indicates the decipher function is absent from a player script.
	ErrLocatorNotFound = errors.New("decipher function not found")
	// ErrDecipherFailed indicates failure during signature deciphering.
	ErrDecipherFailed = errors.New("decipher failed")
	// ErrCipherParse indicates a signature cipher without the required url or s keys.
	ErrCipherParse = errors.New("signature cipher malformed")
	// ErrInvalidURL indicates an input that is not a recognizable video URL.
	ErrInvalidURL = errors.New("invalid video url")
	// ErrStreamNotFound indicates no stream matched an itag or query.
	ErrStreamNotFound = errors.New("stream not found")

	// ErrVideoUnavailable indicates that the requested video cannot be accessed.
	ErrVideoUnavailable = errors.New("video unavailable")
	// ErrPrivate indicates that the video is private.
	ErrPrivate = errors.New("video is private")
	// ErrAgeRestricted indicates that the video has an age restriction.
	ErrAgeRestricted = errors.New("age restricted")
	// ErrGeoBlocked indicates the video is not available in the current region.
	ErrGeoBlocked = errors.New("geo blocked")
	// ErrRateLimited indicates throttling or rate limiting by the remote service.
	ErrRateLimited = errors.New("rate limited")
)

// FromPlayability maps a playabilityStatus status/reason pair to a sentinel
// error. It returns nil for playable statuses.
func FromPlayability(status, reason string) error {
	s := strings.ToUpper(strings.TrimSpace(status))
	r := strings.ToLower(reason)
	switch s {
	case "ERROR":
		if strings.Contains(r, "geograph") || strings.Contains(r, "available in your country") {
			return ErrGeoBlocked
		}
		if strings.Contains(r, "rate limit") || strings.Contains(r, "quota") {
			return ErrRateLimited
		}
		return ErrVideoUnavailable
	case "LOGIN_REQUIRED":
		if strings.Contains(r, "private") {
			return ErrPrivate
		}
		return ErrAgeRestricted
	case "UNPLAYABLE":
		if strings.Contains(r, "private") {
			return ErrPrivate
		}
		return ErrVideoUnavailable
	}
	return nil
}
