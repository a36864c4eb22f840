package variant

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)
var multiSpace = regexp.MustCompile(`\s+`)

// Normalize canonicalizes question text for duplicate comparison: lower-case,
// strip everything outside [a-z0-9\s], collapse whitespace, trim. Two
// questions are duplicates iff their normalized forms are equal. This is a
// purely textual comparison: paraphrases of the same question are not caught.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = nonAlnum.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
