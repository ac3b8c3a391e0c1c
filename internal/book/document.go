package book

import (
	"encoding/json"
	"fmt"
	"os"
)

// Document is the flat, ordered sentence sequence handed over by the
// extraction step. Sentence indices are pre-assigned and never regenerated
// here; the pipeline only fills in analysis and translation fields.
type Document struct {
	Title     string      `json:"title,omitempty"`
	Author    string      `json:"author,omitempty"`
	Language  string      `json:"language,omitempty"`
	Sentences []*Sentence `json:"sentences"`
}

// Load reads a document from an extracted-sentences JSON file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	for i, s := range doc.Sentences {
		if s == nil {
			return nil, fmt.Errorf("document sentence %d is null", i)
		}
	}

	return &doc, nil
}

// Save writes the document, including any analysis and translation results,
// back to a JSON file.
func (d *Document) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ToTranslate returns the sentences flagged by the analyzer, in document order.
func (d *Document) ToTranslate() []*Sentence {
	var out []*Sentence
	for _, s := range d.Sentences {
		if s.ShouldTranslate {
			out = append(out, s)
		}
	}
	return out
}

// TranslatedCount returns how many sentences carry a translation.
func (d *Document) TranslatedCount() int {
	n := 0
	for _, s := range d.Sentences {
		if s.Translated() {
			n++
		}
	}
	return n
}

// TranslationPercentage returns the share of sentences flagged for
// translation, in percent.
func (d *Document) TranslationPercentage() float64 {
	if len(d.Sentences) == 0 {
		return 0
	}
	return float64(len(d.ToTranslate())) / float64(len(d.Sentences)) * 100
}
