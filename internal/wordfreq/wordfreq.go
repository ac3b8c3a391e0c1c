package wordfreq

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Scorer looks up how common a word is in a language. The returned value is
// Zipf-scaled: log10 of occurrences per billion words, so higher means more
// common (6.0 ≈ once per thousand words, 3.0 ≈ once per million). A return
// of 0 means the word is absent from the corpus.
type Scorer interface {
	Zipf(word, lang string) float64
}

// Store is a file-backed Scorer. It loads one frequency table per language
// from <dir>/<lang>.txt, where each line is "word zipf". Tables are loaded on
// first use and kept in memory for the rest of the run.
type Store struct {
	dir    string
	logger *logrus.Logger

	mu     sync.RWMutex
	tables map[string]map[string]float64
}

func NewStore(dir string, logger *logrus.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logger,
		tables: make(map[string]map[string]float64),
	}
}

func (s *Store) Zipf(word, lang string) float64 {
	table, err := s.table(lang)
	if err != nil {
		s.logger.Debugf("No frequency table for %q: %v", lang, err)
		return 0
	}
	return table[strings.ToLower(word)]
}

// Languages returns the language codes that have a table file on disk.
func (s *Store) Languages() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var langs []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".txt"); ok && !e.IsDir() {
			langs = append(langs, name)
		}
	}
	return langs
}

func (s *Store) table(lang string) (map[string]float64, error) {
	lang = strings.ToLower(lang)

	s.mu.RLock()
	table, ok := s.tables[lang]
	s.mu.RUnlock()
	if ok {
		return table, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if table, ok := s.tables[lang]; ok {
		return table, nil
	}

	table, err := loadTable(filepath.Join(s.dir, lang+".txt"))
	if err != nil {
		// Cache the miss so a book in an uncovered language does not
		// re-stat the file for every word.
		s.tables[lang] = nil
		return nil, err
	}

	s.logger.Debugf("Loaded %d frequency entries for %q", len(table), lang)
	s.tables[lang] = table
	return table, nil
}

func loadTable(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	table := make(map[string]float64, 1<<16)

	sc := bufio.NewScanner(f)
	buf := make([]byte, 1024*1024)
	sc.Buffer(buf, 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		word, value, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("malformed frequency entry at %s:%d", path, lineNo)
		}

		zipf, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("bad zipf value at %s:%d: %w", path, lineNo, err)
		}

		table[strings.ToLower(word)] = zipf
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return table, nil
}

// Static is an in-memory Scorer keyed by word, ignoring language. Useful for
// tests and for small custom corpora.
type Static map[string]float64

func (s Static) Zipf(word, _ string) float64 {
	return s[strings.ToLower(word)]
}
