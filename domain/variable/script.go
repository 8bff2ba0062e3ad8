package variable

import "strings"

// latinMax is the highest code point of the single-byte Latin range.
const latinMax = 0xFF

// IsNonLatin reports whether any whitespace separated token of text contains
// a character outside the single-byte Latin range.
func IsNonLatin(text string) bool {
	for _, token := range strings.Fields(text) {
		for _, r := range token {
			if r > latinMax {
				return true
			}
		}
	}
	return false
}
