package difficulty

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/ReinaldoAssis/multi-language-books/internal/book"
	"github.com/ReinaldoAssis/multi-language-books/internal/wordfreq"
)

const (
	// Zipf assigned to words missing from the corpus, so they still pull
	// the average down instead of being excluded.
	unknownWordZipf = 2.0

	// Default score for sentences with no extractable words.
	emptySentenceZipf = 6.0

	contentWordWeight = 0.7
	unknownPenalty    = 1.5
	rareWordZipf      = 3.0

	wordLengthBaseline = 7.0
	wordLengthPenalty  = 0.2

	// Progress callback cadence during whole-document analysis.
	progressEvery = 100
)

// Mode selects which sentences get translated relative to the reader's level.
type Mode string

const (
	// ModeBelow translates sentences at or below the reader's level, leaving
	// harder material in the original language.
	ModeBelow Mode = "below"

	// ModeAbove translates only sentences strictly above the reader's level.
	// A sentence exactly at the reader's level stays untranslated.
	ModeAbove Mode = "above"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeBelow:
		return ModeBelow, nil
	case ModeAbove:
		return ModeAbove, nil
	default:
		return "", fmt.Errorf("unknown translation mode %q (want \"below\" or \"above\")", s)
	}
}

// Threshold is the minimum effective Zipf a sentence must clear to be
// classified at Level. Thresholds are walked easiest-first; the last entry
// acts as the floor.
type Threshold struct {
	Level   book.CEFRLevel
	MinZipf float64
}

// DefaultThresholds map Zipf averages to CEFR bands: 6.0 is roughly the top
// thousand words of a language, 4.0 advanced vocabulary.
var DefaultThresholds = []Threshold{
	{book.LevelA1, 6.0},
	{book.LevelA2, 5.5},
	{book.LevelB1, 5.0},
	{book.LevelB2, 4.5},
	{book.LevelC1, 4.0},
	{book.LevelC2Plus, 0.0},
}

// Score carries the difficulty metrics of a single sentence.
type Score struct {
	AvgZipf       float64
	MinZipf       float64
	UnknownRatio  float64
	WordCount     int
	AvgWordLength float64
	Level         book.CEFRLevel
}

// Composite folds the metrics into one diagnostic number; higher means
// easier. It is reported alongside the level but never feeds classification.
func (s Score) Composite() float64 {
	unknown := s.UnknownRatio * 2
	length := max(0, (s.AvgWordLength-wordLengthBaseline)*wordLengthPenalty)
	return max(0, s.AvgZipf-unknown-length)
}

// wordPattern matches alphabetic words, including Latin-1 accented letters
// and internal apostrophes ("don't", "l'été").
var wordPattern = regexp.MustCompile(`[a-zA-ZÀ-ÿ]+(?:'[a-zA-Z]+)?`)

// shortWordAllowList keeps single-letter pronouns and articles that the
// short-word filter would otherwise drop.
var shortWordAllowList = map[string]struct{}{"i": {}, "a": {}, "o": {}}

// Analyzer scores sentence difficulty from per-word corpus frequency and
// classifies sentences on the CEFR scale.
type Analyzer struct {
	lang          string
	scorer        wordfreq.Scorer
	thresholds    []Threshold
	functionWords map[string]struct{}
	logger        *logrus.Logger
}

// NewAnalyzer builds an analyzer for an ISO 639-1 language code. A nil
// thresholds slice selects DefaultThresholds.
func NewAnalyzer(lang string, scorer wordfreq.Scorer, thresholds []Threshold, logger *logrus.Logger) *Analyzer {
	lang = strings.ToLower(lang)
	if len(lang) > 2 {
		lang = lang[:2]
	}
	if thresholds == nil {
		thresholds = DefaultThresholds
	}

	return &Analyzer{
		lang:          lang,
		scorer:        scorer,
		thresholds:    thresholds,
		functionWords: functionWords(lang),
		logger:        logger,
	}
}

// Analyze scores a single piece of text.
func (a *Analyzer) Analyze(text string) Score {
	words := a.extractWords(text)

	if len(words) == 0 {
		// Punctuation-only or numeric fragments are trivially easy,
		// not unknown.
		return Score{
			AvgZipf: emptySentenceZipf,
			MinZipf: emptySentenceZipf,
			Level:   book.LevelA1,
		}
	}

	var (
		zipfSum      float64
		minZipf      = -1.0
		unknownCount int
		lengthSum    int

		contentSum   float64
		contentMin   = -1.0
		contentCount int
	)

	for _, word := range words {
		lower := strings.ToLower(word)

		zipf := a.scorer.Zipf(lower, a.lang)
		if zipf == 0 {
			unknownCount++
			zipf = unknownWordZipf
		}

		zipfSum += zipf
		if minZipf < 0 || zipf < minZipf {
			minZipf = zipf
		}
		lengthSum += utf8.RuneCountInString(word)

		if _, isFunction := a.functionWords[lower]; !isFunction {
			contentSum += zipf
			contentCount++
			if contentMin < 0 || zipf < contentMin {
				contentMin = zipf
			}
		}
	}

	avgZipf := zipfSum / float64(len(words))
	unknownRatio := float64(unknownCount) / float64(len(words))
	avgWordLength := float64(lengthSum) / float64(len(words))

	// Function words are always common and would mask the difficulty of the
	// rare content words, so weight toward content words without discarding
	// the rest.
	if contentCount > 0 {
		contentAvg := contentSum / float64(contentCount)
		avgZipf = contentAvg*contentWordWeight + avgZipf*(1-contentWordWeight)
		minZipf = min(contentMin, minZipf)
	}

	return Score{
		AvgZipf:       avgZipf,
		MinZipf:       minZipf,
		UnknownRatio:  unknownRatio,
		WordCount:     len(words),
		AvgWordLength: avgWordLength,
		Level:         a.classify(avgZipf, minZipf, unknownRatio),
	}
}

func (a *Analyzer) extractWords(text string) []string {
	matches := wordPattern.FindAllString(text, -1)

	words := matches[:0]
	for _, w := range matches {
		if utf8.RuneCountInString(w) > 2 {
			words = append(words, w)
			continue
		}
		if _, ok := shortWordAllowList[strings.ToLower(w)]; ok {
			words = append(words, w)
		}
	}
	return words
}

// classify maps the metrics to a CEFR level. Dense unknown words and the
// presence of a very rare word both push the effective Zipf down before the
// threshold walk.
func (a *Analyzer) classify(avgZipf, minZipf, unknownRatio float64) book.CEFRLevel {
	effective := avgZipf - unknownRatio*unknownPenalty

	if minZipf < rareWordZipf {
		effective = min(effective, avgZipf-0.5)
	}

	for _, t := range a.thresholds {
		if effective >= t.MinZipf {
			return t.Level
		}
	}
	return book.LevelC2Plus
}

// ShouldTranslate decides whether an analyzed sentence gets native-language
// support. An unanalyzed sentence never translates.
func (a *Analyzer) ShouldTranslate(s *book.Sentence, userLevel book.CEFRLevel, mode Mode) bool {
	if s.CEFRLevel == book.LevelUnknown {
		return false
	}

	if mode == ModeAbove {
		return s.CEFRLevel > userLevel
	}
	return s.CEFRLevel <= userLevel
}

// AnalyzeAll scores every sentence of the document in place, marks the
// translate subset, and returns aggregate stats. The progress callback, when
// non-nil, is invoked at a fixed cadence for long books.
func (a *Analyzer) AnalyzeAll(doc *book.Document, userLevel book.CEFRLevel, mode Mode, progress func(done, total int)) book.AnalysisStats {
	stats := book.NewAnalysisStats()
	total := len(doc.Sentences)
	zipfSum := 0.0

	for i, sentence := range doc.Sentences {
		score := a.Analyze(sentence.Text)

		sentence.DifficultyScore = score.AvgZipf
		sentence.CEFRLevel = score.Level
		sentence.ShouldTranslate = a.ShouldTranslate(sentence, userLevel, mode)

		stats.TotalSentences++
		stats.Distribution[score.Level]++
		zipfSum += score.AvgZipf
		if sentence.ShouldTranslate {
			stats.SentencesToTranslate++
		}

		if progress != nil && i%progressEvery == 0 {
			progress(i, total)
		}
	}

	if total > 0 {
		stats.AvgDifficulty = zipfSum / float64(total)
		stats.TranslationPercentage = float64(stats.SentencesToTranslate) / float64(total) * 100
	}

	a.logger.Infof("Analyzed %d sentences: %d marked for translation (%.1f%%)",
		stats.TotalSentences, stats.SentencesToTranslate, stats.TranslationPercentage)

	return stats
}
