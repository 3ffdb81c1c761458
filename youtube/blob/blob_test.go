package blob

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/ytcore/errs"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "plain assignment",
			doc:  `<script>ytInitialPlayerResponse = {"a":1};var x;</script>`,
			want: `{"a":1}`,
		},
		{
			name: "var assignment",
			doc:  `<script>var ytInitialPlayerResponse = {"a":{"b":{}}};</script>`,
			want: `{"a":{"b":{}}}`,
		},
		{
			name: "trailing objects ignored",
			doc:  `ytInitialPlayerResponse = {"x":[{"y":2}]};ytInitialData = {"z":3};`,
			want: `{"x":[{"y":2}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlayerResponse(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractAnchorPriority(t *testing.T) {
	doc := `second = {"n":2}; first = {"n":1};`
	got, err := Extract(doc, []string{"first = {", "second = {"})
	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, got)
}

func TestExtractNotFound(t *testing.T) {
	tests := map[string]string{
		"no anchor": `<html><body>nothing here</body></html>`,
		"truncated": `ytInitialPlayerResponse = {"a":{"b":1}`,
		"empty":     ``,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := PlayerResponse(doc)
			assert.Empty(t, got)
			assert.True(t, errors.Is(err, errs.ErrExtractionNotFound), "got %v", err)
		})
	}
}

func TestExtractSpanIsBalanced(t *testing.T) {
	docs := []string{
		`ytInitialPlayerResponse = {}`,
		`ytInitialPlayerResponse = {"a":{"b":{"c":{}}},"d":[{},{}]};`,
		`var ytInitialPlayerResponse = {"streamingData":{"formats":[{"itag":18}]}} ;`,
	}
	for _, doc := range docs {
		span, err := PlayerResponse(doc)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(span, "{") && strings.HasSuffix(span, "}"))

		depth := 0
		for i, r := range span {
			switch r {
			case '{':
				depth++
			case '}':
				depth--
			}
			if i < len(span)-1 {
				assert.Positive(t, depth, "depth must stay positive inside span %q at %d", span, i)
			}
		}
		assert.Zero(t, depth)
	}
}
