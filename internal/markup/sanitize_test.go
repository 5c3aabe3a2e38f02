package markup_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Houeta/page-press/internal/markup"
)

const (
	docStart = "<!DOCTYPE html>"
	docEnd   = "</html>"
)

func TestStripDuplicateFragments(t *testing.T) {
	clean := docStart + "<html><body>one</body>" + docEnd + "\n"

	testCases := []struct {
		name        string
		text        string
		expected    string
		wantRemoved int
	}{
		{
			name:        "clean document untouched",
			text:        clean,
			expected:    clean,
			wantRemoved: 0,
		},
		{
			name:        "one duplicate removed",
			text:        clean + docStart + "<html><body>two</body>" + docEnd,
			expected:    clean,
			wantRemoved: 1,
		},
		{
			name: "two duplicates removed",
			text: clean +
				docStart + "<html>two" + docEnd +
				docStart + "<html>three" + docEnd,
			expected:    clean,
			wantRemoved: 2,
		},
		{
			name:        "duplicate without end marker removed to end of text",
			text:        clean + docStart + "<html>truncated tail",
			expected:    clean,
			wantRemoved: 1,
		},
		{
			name:        "no document marker at all",
			text:        "<div>just a fragment</div>",
			expected:    "<div>just a fragment</div>",
			wantRemoved: 0,
		},
		{
			name:        "empty input",
			text:        "",
			expected:    "",
			wantRemoved: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, removed := markup.StripDuplicateFragments(tc.text, docStart, docEnd)

			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.wantRemoved, removed)
			assert.LessOrEqual(t, strings.Count(got, docStart), 1)
		})
	}
}

func TestStripDuplicateFragments_Idempotent(t *testing.T) {
	dirty := docStart + "<html>one" + docEnd + docStart + "<html>two" + docEnd

	once, removed := markup.StripDuplicateFragments(dirty, docStart, docEnd)
	assert.Equal(t, 1, removed)

	twice, removed := markup.StripDuplicateFragments(once, docStart, docEnd)
	assert.Equal(t, 0, removed)
	assert.Equal(t, once, twice)
}
