package translation

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ReinaldoAssis/multi-language-books/internal/book"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testPlanner(charBudget, maxSentences, window int) *Planner {
	return NewPlanner(charBudget, maxSentences, window, NewPromptBuilder("en", "pt"), testLogger())
}

// makeSentences builds n sentences of textLen characters each.
func makeSentences(n, textLen int) []*book.Sentence {
	sentences := make([]*book.Sentence, n)
	for i := range sentences {
		sentences[i] = &book.Sentence{
			Index: i,
			Text:  strings.Repeat("x", textLen),
		}
	}
	return sentences
}

func TestContextIndices(t *testing.T) {
	testCases := []struct {
		name     string
		index    int
		total    int
		window   int
		expected []int
	}{
		{"interior point", 5, 20, 2, []int{3, 4, 6, 7}},
		{"start of document", 0, 20, 2, []int{1, 2}},
		{"end of document", 19, 20, 2, []int{17, 18}},
		{"near start", 1, 20, 2, []int{0, 2, 3}},
		{"window one", 5, 20, 1, []int{4, 6}},
		{"window zero", 5, 20, 0, nil},
		{"tiny document", 0, 1, 2, nil},
		{"window covers whole document", 1, 3, 5, []int{0, 2}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ContextIndices(tc.index, tc.total, tc.window)
			if len(got) == 0 && len(tc.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("ContextIndices(%d, %d, %d) = %v, want %v",
					tc.index, tc.total, tc.window, got, tc.expected)
			}
		})
	}
}

func TestPlanCompleteness(t *testing.T) {
	all := makeSentences(30, 40)
	var toTranslate []*book.Sentence
	for i, s := range all {
		if i%3 != 2 {
			toTranslate = append(toTranslate, s)
		}
	}

	p := testPlanner(500, 4, 2)
	batches := p.Plan(all, toTranslate)

	seen := make(map[int]int)
	for _, b := range batches {
		for _, s := range b.Translate {
			seen[s.Index]++
		}
	}

	if len(seen) != len(toTranslate) {
		t.Fatalf("batches cover %d distinct sentences, want %d", len(seen), len(toTranslate))
	}
	for _, s := range toTranslate {
		if seen[s.Index] != 1 {
			t.Errorf("sentence %d appears in %d translate-lists, want exactly 1", s.Index, seen[s.Index])
		}
	}
}

func TestPlanRespectsLimits(t *testing.T) {
	all := makeSentences(30, 40)

	p := testPlanner(500, 4, 2)
	batches := p.Plan(all, all)

	for i, b := range batches {
		if len(b.Translate) > p.MaxSentences {
			t.Errorf("batch %d holds %d translate sentences, cap is %d", i, len(b.Translate), p.MaxSentences)
		}

		if len(b.Translate) == 1 {
			// A single oversized sentence legitimately owns its batch.
			continue
		}

		chars := 0
		for _, s := range b.Translate {
			chars += len(s.Text) + sentenceOverhead
		}
		for _, s := range b.Context {
			chars += len(s.Text) + sentenceOverhead
		}
		if chars > p.CharBudget {
			t.Errorf("batch %d costs %d chars, budget is %d", i, chars, p.CharBudget)
		}
	}
}

func TestPlanOversizedSentence(t *testing.T) {
	all := makeSentences(3, 40)
	all[1].Text = strings.Repeat("y", 5000)

	p := testPlanner(300, 10, 1)
	batches := p.Plan(all, all)

	found := false
	for _, b := range batches {
		for _, s := range b.Translate {
			if s.Index == 1 {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("oversized sentence was dropped from the plan")
	}
}

func TestPlanDeterministic(t *testing.T) {
	// Ten 50-char sentences capped at five per batch must always split
	// into the same two batches.
	all := makeSentences(10, 50)

	p := testPlanner(80000, 5, 1)

	first := p.Plan(all, all)
	second := p.Plan(all, all)

	if len(first) != 2 {
		t.Fatalf("got %d batches, want 2", len(first))
	}
	for half, b := range first {
		if len(b.Translate) != 5 {
			t.Fatalf("batch %d holds %d sentences, want 5", half, len(b.Translate))
		}
		for j, s := range b.Translate {
			want := half*5 + j
			if s.Index != want {
				t.Errorf("batch %d position %d holds sentence %d, want %d", half, j, s.Index, want)
			}
		}
	}

	if len(second) != len(first) {
		t.Fatalf("re-planning produced %d batches, first run produced %d", len(second), len(first))
	}
	for i := range first {
		if first[i].Prompt != second[i].Prompt {
			t.Errorf("batch %d prompt differs between runs", i)
		}
	}
}

func TestPlanSharedContextDedup(t *testing.T) {
	all := makeSentences(6, 50)
	toTranslate := []*book.Sentence{all[2], all[3]}

	p := testPlanner(80000, 10, 2)
	batches := p.Plan(all, toTranslate)

	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}

	var contextIndices []int
	for _, s := range batches[0].Context {
		contextIndices = append(contextIndices, s.Index)
	}
	// Windows of 2 and 3 overlap; translated sentences never show up as
	// context.
	want := []int{0, 1, 4, 5}
	if !reflect.DeepEqual(contextIndices, want) {
		t.Errorf("context indices = %v, want %v", contextIndices, want)
	}
}

func TestPlanEstimatesTokens(t *testing.T) {
	all := makeSentences(4, 100)

	p := testPlanner(80000, 10, 1)
	batches := p.Plan(all, all)

	for i, b := range batches {
		want := len(b.Prompt) / charsPerToken
		if b.EstimatedTokens != want {
			t.Errorf("batch %d estimate = %d, want %d", i, b.EstimatedTokens, want)
		}
		if b.EstimatedTokens == 0 {
			t.Errorf("batch %d has a zero token estimate", i)
		}
	}
}

func TestPlanEmptyInput(t *testing.T) {
	p := testPlanner(500, 4, 2)

	if batches := p.Plan(nil, nil); len(batches) != 0 {
		t.Errorf("empty input produced %d batches", len(batches))
	}

	all := makeSentences(5, 40)
	if batches := p.Plan(all, nil); len(batches) != 0 {
		t.Errorf("no translate sentences produced %d batches", len(batches))
	}
}
