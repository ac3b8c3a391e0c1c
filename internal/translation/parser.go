package translation

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ReinaldoAssis/multi-language-books/internal/book"
)

// translationReply is the structured shape requested from the backends.
type translationReply struct {
	Translations []struct {
		ID   int    `json:"id"`
		Text string `json:"text"`
	} `json:"translations"`
}

// lineFormat matches one "ID: text" reply line, tolerating an optional "ID"
// prefix and loose whitespace around the colon.
var lineFormat = regexp.MustCompile(`^(?:ID\s*)?(\d+)\s*:\s*(.+)$`)

// codeFence strips a leading/trailing markdown code fence from a JSON reply.
var codeFence = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// ParseReply decodes the raw model reply and writes translations onto the
// expected sentences in place. Structured JSON is the primary path; a
// line-oriented scan recovers what it can when the JSON is broken. Every
// expected sentence ends up with some translated text — its own original as
// a last resort — so downstream assembly never sees a gap. Returns the
// translated and failed counts.
func ParseReply(raw string, expected []*book.Sentence, logger *logrus.Logger) (translated, failed int) {
	byIndex := make(map[int]*book.Sentence, len(expected))
	for _, s := range expected {
		byIndex[s.Index] = s
	}

	matches := parseJSON(raw, byIndex, logger)
	if matches == 0 {
		matches = parseLines(raw, byIndex, logger)
	}

	for _, s := range expected {
		if s.Translated() {
			translated++
			continue
		}
		// Identity fallback: the reader sees the original text.
		s.TranslatedText = s.Text
		failed++
	}

	if matches != len(expected) {
		logger.Warnf("Reply matched %d of %d expected sentences", matches, len(expected))
	}

	return translated, failed
}

func parseJSON(raw string, byIndex map[int]*book.Sentence, logger *logrus.Logger) int {
	trimmed := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(trimmed); m != nil {
		trimmed = m[1]
	}

	var reply translationReply
	if err := json.Unmarshal([]byte(trimmed), &reply); err != nil {
		logger.Debugf("Reply is not valid JSON, trying line format: %v", err)
		return 0
	}

	matches := 0
	for _, t := range reply.Translations {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}

		sentence, ok := byIndex[t.ID]
		if !ok {
			logger.Debugf("Reply contains unexpected sentence id %d", t.ID)
			continue
		}

		sentence.TranslatedText = text
		matches++
	}
	return matches
}

func parseLines(raw string, byIndex map[int]*book.Sentence, logger *logrus.Logger) int {
	matches := 0
	for _, line := range strings.Split(raw, "\n") {
		line = stripMarkdownNoise(line)
		if line == "" {
			continue
		}

		m := lineFormat.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		sentence, ok := byIndex[idx]
		if !ok {
			logger.Debugf("Reply line references unexpected sentence id %d", idx)
			continue
		}

		text := strings.TrimSpace(m[2])
		if text == "" {
			continue
		}

		sentence.TranslatedText = text
		matches++
	}
	return matches
}

// stripMarkdownNoise removes bold markers and horizontal rules that chatty
// models wrap around their output.
func stripMarkdownNoise(line string) string {
	line = strings.TrimSpace(line)
	line = strings.ReplaceAll(line, "**", "")

	trimmed := strings.Trim(line, "-— ")
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(line)
}
