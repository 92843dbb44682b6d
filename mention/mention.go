// Package mention extracts @-mention tokens from chat message text.
//
// The same extractor runs server-side (to populate the persisted tag list)
// and client-side (for display highlighting), so both views of a message
// always agree on what counts as a mention.
package mention

import "regexp"

// A mention token is "@" followed by a run of word characters
// (letters, digits, underscore). The leading "@" is stripped.
var tokenPattern = regexp.MustCompile(`@(\w+)`)

// Extract returns every mention token in content, in left-to-right order.
// Repeated mentions of the same name are kept once per occurrence; callers
// that want a distinct set must dedupe themselves.
func Extract(content string) []string {
	matches := tokenPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return []string{}
	}
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, m[1])
	}
	return tokens
}
