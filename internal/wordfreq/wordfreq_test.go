package wordfreq

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func writeTable(t *testing.T, dir, lang, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, lang+".txt"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestStoreZipf(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "en", "the 7.73\nowl 4.12\nSerendipity 2.98\n")

	store := NewStore(dir, quietLogger())

	testCases := []struct {
		word     string
		expected float64
	}{
		{"the", 7.73},
		{"owl", 4.12},
		{"OWL", 4.12},
		{"serendipity", 2.98},
		{"zzyzx", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.word, func(t *testing.T) {
			if got := store.Zipf(tc.word, "en"); got != tc.expected {
				t.Errorf("Zipf(%q) = %v, want %v", tc.word, got, tc.expected)
			}
		})
	}
}

func TestStoreMissingLanguage(t *testing.T) {
	store := NewStore(t.TempDir(), quietLogger())

	// Absent table: every lookup is 0, and repeated lookups must not
	// error differently once the miss is cached.
	if got := store.Zipf("palavra", "pt"); got != 0 {
		t.Errorf("Zipf for missing language = %v, want 0", got)
	}
	if got := store.Zipf("outra", "pt"); got != 0 {
		t.Errorf("Zipf after cached miss = %v, want 0", got)
	}
}

func TestStoreSkipsCommentsAndBlanks(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "en", "# built 2026-01-12\n\ncat 5.61\n\n# tail comment\ndog 5.43\n")

	store := NewStore(dir, quietLogger())

	if got := store.Zipf("cat", "en"); got != 5.61 {
		t.Errorf("Zipf(cat) = %v, want 5.61", got)
	}
	if got := store.Zipf("dog", "en"); got != 5.43 {
		t.Errorf("Zipf(dog) = %v, want 5.43", got)
	}
}

func TestStoreMalformedTable(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "en", "cat 5.61\nnozipf\n")

	store := NewStore(dir, quietLogger())

	// A broken table is treated like a missing one.
	if got := store.Zipf("cat", "en"); got != 0 {
		t.Errorf("Zipf from malformed table = %v, want 0", got)
	}
}

func TestStoreLanguages(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "en", "a 7.0\n")
	writeTable(t, dir, "pt", "e 7.2\n")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(dir, quietLogger())

	langs := store.Languages()
	sort.Strings(langs)
	if len(langs) != 2 || langs[0] != "en" || langs[1] != "pt" {
		t.Errorf("Languages() = %v, want [en pt]", langs)
	}
}

func TestStaticScorer(t *testing.T) {
	s := Static{"olá": 6.1}

	if got := s.Zipf("Olá", "pt"); got != 6.1 {
		t.Errorf("Zipf(Olá) = %v, want 6.1", got)
	}
	if got := s.Zipf("missing", "pt"); got != 0 {
		t.Errorf("Zipf(missing) = %v, want 0", got)
	}
}
