package book

import (
	"regexp"
	"strings"
)

var (
	multiSpace       = regexp.MustCompile(`\s+`)
	spaceBeforePunct = regexp.MustCompile(`\s+([,.!?;:])`)
)

// CleanText collapses whitespace runs and removes stray spaces before
// punctuation, normalizing sentences that arrive from sloppy extraction.
func CleanText(text string) string {
	text = multiSpace.ReplaceAllString(text, " ")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// WordCount returns the whitespace-separated word count over the document's
// original text.
func (d *Document) WordCount() int {
	n := 0
	for _, s := range d.Sentences {
		n += len(strings.Fields(s.Text))
	}
	return n
}

// ReadingTime estimates how long wordCount words take to read at the given
// pace. A non-positive pace falls back to 200 words per minute.
func ReadingTime(wordCount, wpm int) (hours, minutes int) {
	if wpm <= 0 {
		wpm = 200
	}
	total := wordCount / wpm
	return total / 60, total % 60
}
