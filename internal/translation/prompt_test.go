package translation

import (
	"strings"
	"testing"

	"github.com/ReinaldoAssis/multi-language-books/internal/book"
)

func TestPromptBuilderMarkers(t *testing.T) {
	b := NewPromptBuilder("en", "pt")

	translate := []*book.Sentence{
		{Index: 2, Text: "The owl hooted."},
	}
	context := []*book.Sentence{
		{Index: 1, Text: "Night fell."},
		{Index: 3, Text: "Nobody heard it."},
	}

	prompt := b.Build(translate, context)

	for _, want := range []string{
		"[TRANSLATE] 2: The owl hooted.",
		"[CONTEXT] 1: Night fell.",
		"[CONTEXT] 3: Nobody heard it.",
		"from English to Portuguese",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestPromptBuilderOrdering(t *testing.T) {
	b := NewPromptBuilder("en", "pt")

	translate := []*book.Sentence{
		{Index: 8, Text: "eight"},
		{Index: 4, Text: "four"},
	}
	context := []*book.Sentence{
		{Index: 6, Text: "six"},
		{Index: 3, Text: "three"},
	}

	prompt := b.Build(translate, context)

	order := []string{
		"[CONTEXT] 3: three",
		"[TRANSLATE] 4: four",
		"[CONTEXT] 6: six",
		"[TRANSLATE] 8: eight",
	}
	last := -1
	for _, line := range order {
		pos := strings.Index(prompt, line)
		if pos < 0 {
			t.Fatalf("prompt missing %q", line)
		}
		if pos < last {
			t.Errorf("line %q appears out of document order", line)
		}
		last = pos
	}
}

func TestPromptBuilderDedup(t *testing.T) {
	// A sentence in both lists renders once, as a translate line.
	b := NewPromptBuilder("en", "pt")

	shared := &book.Sentence{Index: 5, Text: "shared"}
	prompt := b.Build([]*book.Sentence{shared}, []*book.Sentence{shared})

	if count := strings.Count(prompt, ": shared"); count != 1 {
		t.Errorf("shared sentence rendered %d times, want 1", count)
	}
	if !strings.Contains(prompt, "[TRANSLATE] 5: shared") {
		t.Error("shared sentence lost its translate marker")
	}
	if strings.Contains(prompt, "[CONTEXT] 5: shared") {
		t.Error("shared sentence also rendered as context")
	}
}

func TestPromptBuilderUnknownLanguage(t *testing.T) {
	b := NewPromptBuilder("en", "xx")

	prompt := b.Build([]*book.Sentence{{Index: 0, Text: "hi"}}, nil)
	if !strings.Contains(prompt, "from English to xx") {
		t.Error("unknown language code should pass through unchanged")
	}
}
