package formats

import (
	"fmt"

	"github.com/ytget/ytcore/errs"
	"github.com/ytget/ytcore/types"
)

// FallbackPlayerResponse finds the player response inside a watch endpoint
// JSON reply. The reply may be an array of parts or a single object, and the
// response may sit under "playerResponse" or appear as a bare
// videoDetails/streamingData pair.
func FallbackPlayerResponse(raw []byte) (map[string]any, error) {
	v, err := DecodeJSON(raw)
	if err != nil {
		return nil, err
	}
	switch root := v.(type) {
	case []any:
		for _, part := range root {
			if m, ok := part.(map[string]any); ok {
				if pr, ok := playerResponseOf(m); ok {
					return pr, nil
				}
			}
		}
	case map[string]any:
		if pr, ok := playerResponseOf(root); ok {
			return pr, nil
		}
	}
	return nil, fmt.Errorf("%w: fallback reply carries no player response", errs.ErrExtractionNotFound)
}

// ParseFallback decodes a watch endpoint JSON reply into VideoDetails.
func ParseFallback(raw []byte, videoID string) (*types.VideoDetails, PlayerResponse, error) {
	root, err := FallbackPlayerResponse(raw)
	if err != nil {
		return nil, nil, err
	}
	return ParsePlayerResponse(root, videoID), PlayerResponse(root), nil
}

func playerResponseOf(m map[string]any) (map[string]any, bool) {
	switch pr := m["playerResponse"].(type) {
	case map[string]any:
		return pr, true
	case string:
		// Older replies embed the response as a JSON string.
		v, err := DecodeJSON([]byte(pr))
		if err == nil {
			if obj, ok := v.(map[string]any); ok {
				return obj, true
			}
		}
	}
	_, hasDetails := m["videoDetails"].(map[string]any)
	_, hasStreaming := m["streamingData"].(map[string]any)
	if hasDetails && hasStreaming {
		return m, true
	}
	return nil, false
}
