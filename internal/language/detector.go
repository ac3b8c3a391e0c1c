package language

import (
	"strings"

	"github.com/pemistahl/lingua-go"
	"github.com/sirupsen/logrus"

	"github.com/ReinaldoAssis/multi-language-books/internal/book"
)

const (
	minTextLength = 20
	maxSamples    = 3
	sampleLength  = 500
)

// Detector identifies the source language of a document from a small sample
// of its sentences, without a network call.
type Detector struct {
	detector lingua.LanguageDetector
	logger   *logrus.Logger
}

var supported = []lingua.Language{
	lingua.English,
	lingua.Portuguese,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Italian,
	lingua.Dutch,
	lingua.Russian,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Korean,
}

func NewDetector(logger *logrus.Logger) *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(supported...).
		Build()

	return &Detector{detector: detector, logger: logger}
}

// Detect returns the ISO 639-1 code of the text's language. The second
// return value is false when the text is too short or no language matched.
func (d *Detector) Detect(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if len(text) < minTextLength {
		return "", false
	}

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}

	code := strings.ToLower(lang.IsoCode639_1().String())
	d.logger.Debugf("Detected language: %s", code)
	return code, true
}

// DetectDocument samples the first few long-enough sentences of the document
// and detects their combined language. Falls back to "en" when the document
// has no usable text.
func (d *Detector) DetectDocument(doc *book.Document) string {
	var samples []string
	for _, s := range doc.Sentences {
		text := strings.TrimSpace(s.Text)
		if len(text) < minTextLength {
			continue
		}
		if len(text) > sampleLength {
			text = text[:sampleLength]
		}
		samples = append(samples, text)
		if len(samples) >= maxSamples {
			break
		}
	}

	if len(samples) == 0 {
		d.logger.Warn("No suitable text samples for language detection, assuming English")
		return "en"
	}

	code, ok := d.Detect(strings.Join(samples, "\n"))
	if !ok {
		d.logger.Warn("Could not detect document language, assuming English")
		return "en"
	}

	return code
}
