package translation

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ReinaldoAssis/multi-language-books/internal/book"
)

const (
	// Per-sentence character overhead for the marker, index, and newline in
	// the rendered prompt.
	sentenceOverhead = 20

	// Rough chars-per-token ratio used to size prompts.
	charsPerToken = 4
)

// Batch is one bounded group of sentences sent to the backend in a single
// request: the sentences to translate plus the neighbors required as context.
type Batch struct {
	Translate       []*book.Sentence
	Context         []*book.Sentence
	Prompt          string
	EstimatedTokens int
}

// ContextIndices returns the indices of up to window sentences on each side
// of index, clipped to [0, total), sorted ascending. It is a pure function of
// position.
func ContextIndices(index, total, window int) []int {
	indices := make([]int, 0, 2*window)

	for i := index - window; i <= index+window; i++ {
		if i == index || i < 0 || i >= total {
			continue
		}
		indices = append(indices, i)
	}
	return indices
}

// Planner groups the sentences to translate into batches under a character
// budget and a per-batch sentence cap, carrying each sentence's context
// window along. Context shared by nearby sentences is charged only once per
// batch.
type Planner struct {
	CharBudget   int
	MaxSentences int
	Window       int

	prompts *PromptBuilder
	logger  *logrus.Logger
}

func NewPlanner(charBudget, maxSentences, window int, prompts *PromptBuilder, logger *logrus.Logger) *Planner {
	return &Planner{
		CharBudget:   charBudget,
		MaxSentences: maxSentences,
		Window:       window,
		prompts:      prompts,
		logger:       logger,
	}
}

// Plan walks the translate set in document order and greedily fills batches.
// Every translate sentence lands in exactly one batch; a sentence too large
// for the budget still gets a batch of its own rather than being dropped.
// The plan is deterministic for a given input and budget.
func (p *Planner) Plan(all []*book.Sentence, toTranslate []*book.Sentence) []*Batch {
	byIndex := make(map[int]*book.Sentence, len(all))
	for _, s := range all {
		byIndex[s.Index] = s
	}

	var batches []*Batch
	var current []*book.Sentence
	contextSet := make(map[int]struct{})
	chars := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		batches = append(batches, p.finalize(current, contextSet, byIndex))
		current = nil
		contextSet = make(map[int]struct{})
		chars = 0
	}

	for _, sentence := range toTranslate {
		contextIndices := ContextIndices(sentence.Index, len(all), p.Window)

		// Incremental cost: the sentence plus only the context not
		// already charged to this batch.
		cost := len(sentence.Text) + sentenceOverhead
		for _, idx := range contextIndices {
			if _, seen := contextSet[idx]; seen {
				continue
			}
			if ctx, ok := byIndex[idx]; ok {
				cost += len(ctx.Text) + sentenceOverhead
			}
		}

		if len(current) > 0 && (chars+cost > p.CharBudget || len(current) >= p.MaxSentences) {
			flush()
			// Recost against the fresh batch: nothing is shared yet.
			cost = len(sentence.Text) + sentenceOverhead
			for _, idx := range contextIndices {
				if ctx, ok := byIndex[idx]; ok {
					cost += len(ctx.Text) + sentenceOverhead
				}
			}
		}

		current = append(current, sentence)
		for _, idx := range contextIndices {
			contextSet[idx] = struct{}{}
		}
		chars += cost
	}
	flush()

	p.logger.Debugf("Planned %d batches for %d sentences", len(batches), len(toTranslate))
	return batches
}

func (p *Planner) finalize(translate []*book.Sentence, contextSet map[int]struct{}, byIndex map[int]*book.Sentence) *Batch {
	translateSet := make(map[int]struct{}, len(translate))
	for _, s := range translate {
		translateSet[s.Index] = struct{}{}
	}

	indices := make([]int, 0, len(contextSet))
	for idx := range contextSet {
		// A sentence both translated and needed as context is rendered
		// once, as a translate line.
		if _, ok := translateSet[idx]; ok {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	context := make([]*book.Sentence, 0, len(indices))
	for _, idx := range indices {
		if s, ok := byIndex[idx]; ok {
			context = append(context, s)
		}
	}

	prompt := p.prompts.Build(translate, context)

	return &Batch{
		Translate:       translate,
		Context:         context,
		Prompt:          prompt,
		EstimatedTokens: len(prompt) / charsPerToken,
	}
}
