package pipeline

import (
	"errors"
	"strings"
)

// Model responses frequently wrap JSON in prose or markdown fences. These
// helpers carve out the widest bracketed span, mirroring a greedy match
// from the first opening to the last closing bracket.

var errNoJSON = errors.New("no JSON payload in response")

func extractJSONArray(s string) (string, error) {
	return extractSpan(s, '[', ']')
}

func extractJSONObject(s string) (string, error) {
	return extractSpan(s, '{', '}')
}

func extractSpan(s string, open, close byte) (string, error) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start == -1 || end == -1 || end < start {
		return "", errNoJSON
	}
	return s[start : end+1], nil
}
