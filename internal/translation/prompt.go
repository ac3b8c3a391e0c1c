package translation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"

	"github.com/ReinaldoAssis/multi-language-books/internal/book"
)

// Human-readable names for the ISO codes the pipeline supports. Unknown
// codes pass through unchanged; models handle raw codes fine.
var languageNames = map[string]string{
	"en": "English",
	"pt": "Portuguese",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"nl": "Dutch",
	"ru": "Russian",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// PromptBuilder renders a batch into a single self-contained instruction
// payload. The reply can be interpreted knowing only the translate-index set.
type PromptBuilder struct {
	sourceLang string
	targetLang string
}

func NewPromptBuilder(sourceLang, targetLang string) *PromptBuilder {
	return &PromptBuilder{sourceLang: sourceLang, targetLang: targetLang}
}

// Build renders translate and context sentences as tagged lines in global
// order, preceded by the instruction block. A sentence present in both lists
// appears once, as a translate line.
func (b *PromptBuilder) Build(translate, context []*book.Sentence) string {
	translateSet := make(map[int]struct{}, len(translate))
	for _, s := range translate {
		translateSet[s.Index] = struct{}{}
	}

	merged := make([]*book.Sentence, 0, len(translate)+len(context))
	merged = append(merged, translate...)
	merged = append(merged, context...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Index < merged[j].Index })

	seen := make(map[int]struct{}, len(merged))
	var lines []string
	for _, s := range merged {
		if _, dup := seen[s.Index]; dup {
			continue
		}
		seen[s.Index] = struct{}{}

		marker := "[CONTEXT]"
		if _, ok := translateSet[s.Index]; ok {
			marker = "[TRANSLATE]"
		}
		lines = append(lines, fmt.Sprintf("%s %d: %s", marker, s.Index, s.Text))
	}

	instructions := heredoc.Docf(`
		You are a professional translator helping create a bilingual learning book.

		**Task:** Translate ONLY the sentences marked with [TRANSLATE] from %s to %s.

		**Important Rules:**
		1. Keep the exact sentence numbering in your response
		2. Only translate sentences marked with [TRANSLATE]
		3. Maintain the same tone, style, and register
		4. Preserve proper nouns unless they have well-known translations
		5. Keep punctuation consistent with the target language conventions
		6. Do NOT translate sentences marked with [CONTEXT] - they are only for reference
		7. Return ONLY the translations, one per line, in the exact format: "ID: translated text", with every requested ID present
	`, languageName(b.sourceLang), languageName(b.targetLang))

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n**Input:**\n")
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n\n**Your translations:**")

	return sb.String()
}
