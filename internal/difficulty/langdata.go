package difficulty

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed languages.yaml
var languagesYAML []byte

type langData struct {
	FunctionWords []string `yaml:"function_words"`
}

var langTable = mustLoadLangTable()

func mustLoadLangTable() map[string]langData {
	table := make(map[string]langData)
	if err := yaml.Unmarshal(languagesYAML, &table); err != nil {
		panic(fmt.Sprintf("difficulty: bad embedded languages.yaml: %v", err))
	}
	return table
}

// functionWords returns the function-word set for a language code, or an
// empty set when the language has no entry (every word then counts as a
// content word, which is the conservative choice).
func functionWords(lang string) map[string]struct{} {
	data, ok := langTable[lang]
	if !ok {
		return map[string]struct{}{}
	}
	set := make(map[string]struct{}, len(data.FunctionWords))
	for _, w := range data.FunctionWords {
		set[w] = struct{}{}
	}
	return set
}
