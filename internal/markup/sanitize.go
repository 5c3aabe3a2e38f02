package markup

import "strings"

// StripDuplicateFragments removes every whole-document fragment that follows
// the first one: each occurrence of startMarker after the first is excised up
// to and including its matching endMarker (or to the end of the text when the
// end marker is missing). It returns the cleaned text and the number of
// fragments removed. Running it on already-clean text is a no-op.
func StripDuplicateFragments(text, startMarker, endMarker string) (string, int) {
	first := strings.Index(text, startMarker)
	if first < 0 {
		return text, 0
	}

	removed := 0
	searchFrom := first + len(startMarker)

	for {
		rel := strings.Index(text[searchFrom:], startMarker)
		if rel < 0 {
			return text, removed
		}
		dupStart := searchFrom + rel

		dupEnd := len(text)
		if rel = strings.Index(text[dupStart:], endMarker); rel >= 0 {
			dupEnd = dupStart + rel + len(endMarker)
		}

		text = text[:dupStart] + text[dupEnd:]
		removed++
	}
}
