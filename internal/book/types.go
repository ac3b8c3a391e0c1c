package book

import (
	"strings"
	"time"
)

// CEFRLevel is a proficiency band on the CEFR scale, ordered A1 < A2 < B1 <
// B2 < C1 < C2+. The zero value means the sentence has not been analyzed yet.
type CEFRLevel int

const (
	LevelUnknown CEFRLevel = iota
	LevelA1
	LevelA2
	LevelB1
	LevelB2
	LevelC1
	LevelC2Plus
)

// Levels lists all assigned levels in ascending proficiency order.
var Levels = []CEFRLevel{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2Plus}

func (l CEFRLevel) String() string {
	switch l {
	case LevelA1:
		return "A1"
	case LevelA2:
		return "A2"
	case LevelB1:
		return "B1"
	case LevelB2:
		return "B2"
	case LevelC1:
		return "C1"
	case LevelC2Plus:
		return "C2+"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name ("A1".."C1", "C2", "C2+") to a CEFRLevel.
// Unrecognized input defaults to B1, matching the behavior readers expect
// when a profile carries a malformed level.
func ParseLevel(s string) CEFRLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A1":
		return LevelA1
	case "A2":
		return LevelA2
	case "B1":
		return LevelB1
	case "B2":
		return LevelB2
	case "C1":
		return LevelC1
	case "C2", "C2+":
		return LevelC2Plus
	default:
		return LevelB1
	}
}

func (l CEFRLevel) MarshalText() ([]byte, error) {
	if l == LevelUnknown {
		return []byte(""), nil
	}
	return []byte(l.String()), nil
}

func (l *CEFRLevel) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*l = LevelUnknown
		return nil
	}
	*l = ParseLevel(string(data))
	return nil
}

// Sentence is one sentence of the book. Index is assigned once by the
// extraction step, is unique across the whole document, and defines the total
// order used for context-window resolution. The analysis and translation
// fields are filled in later, in place.
type Sentence struct {
	Index          int    `json:"index"`
	ParagraphIndex int    `json:"paragraph_index"`
	ChapterIndex   int    `json:"chapter_index"`
	Text           string `json:"text"`

	DifficultyScore float64   `json:"difficulty_score,omitempty"`
	CEFRLevel       CEFRLevel `json:"cefr_level,omitempty"`
	ShouldTranslate bool      `json:"should_translate,omitempty"`

	TranslatedText string `json:"translated_text,omitempty"`
}

// Translated reports whether the sentence has received a translation,
// including the identity fallback.
func (s *Sentence) Translated() bool {
	return s.TranslatedText != ""
}

// FinalText returns the translated text when present, the original otherwise.
func (s *Sentence) FinalText() string {
	if s.Translated() {
		return s.TranslatedText
	}
	return s.Text
}

// AnalysisStats summarizes a difficulty-analysis pass over a document.
// All fields are always populated.
type AnalysisStats struct {
	TotalSentences        int               `json:"total_sentences"`
	SentencesToTranslate  int               `json:"sentences_to_translate"`
	AvgDifficulty         float64           `json:"avg_difficulty"`
	Distribution          map[CEFRLevel]int `json:"cefr_distribution"`
	TranslationPercentage float64           `json:"translation_percentage"`
}

// NewAnalysisStats returns stats with every level present in the histogram.
func NewAnalysisStats() AnalysisStats {
	dist := make(map[CEFRLevel]int, len(Levels))
	for _, l := range Levels {
		dist[l] = 0
	}
	return AnalysisStats{Distribution: dist}
}

// TranslationStats accumulates counters across a translation run.
// Errors holds one message per failed batch; a non-empty list does not mean
// the run failed, only that some batches fell back to original text.
type TranslationStats struct {
	TotalSentences      int           `json:"total_sentences"`
	TranslatedSentences int           `json:"translated_sentences"`
	FailedSentences     int           `json:"failed_sentences"`
	TotalBatches        int           `json:"total_batches"`
	TotalTime           time.Duration `json:"total_time"`
	Errors              []string      `json:"errors,omitempty"`
}
