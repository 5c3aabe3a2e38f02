// Package markup provides the low-level text tools the generator uses to
// operate on pieces of a page without parsing the whole document: tag
// boundary scanning, attribute extraction and merging, and stripping of
// accidentally duplicated document fragments.
package markup

import "errors"

// ErrUnterminatedTag is returned when the text ends before the scanned tag
// is closed. Callers must treat it as malformed input, not skip it.
var ErrUnterminatedTag = errors.New("markup: unterminated tag")

// TagEnd returns the index of the '>' that closes the tag opening at start.
// A '>' inside a single- or double-quoted attribute value does not terminate
// the tag, so values carrying encoded JSON or comparison characters are safe.
func TagEnd(text string, start int) (int, error) {
	inSingle := false
	inDouble := false

	for i := start; i < len(text); i++ {
		switch text[i] {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '>':
			if !inSingle && !inDouble {
				return i, nil
			}
		}
	}

	return 0, ErrUnterminatedTag
}
