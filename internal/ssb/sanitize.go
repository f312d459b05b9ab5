package ssb

import "strings"

// illegalNameChars are removed from game names before they are used as a
// directory name: the characters Windows refuses in a path segment plus
// square brackets.
const illegalNameChars = `[\/?:*"<>|]`

// SanitizeName strips every character in illegalNameChars from name and
// trims surrounding whitespace.
func SanitizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalNameChars, r) {
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(cleaned)
}
