// internal/words/words.go
//
// Word list management for the dictionary oracle.
//
// Responsibilities:
//   - Load a dictionary from a file (WORDS_FILE) or fall back to the embedded default.
//   - Keep an upper-case set for exact-match lookups.
//   - Expose the list for puzzle generation and solvability checks.
//
// Word Lists:
//   - One word per line; blank lines and '#' comments are ignored.
//   - Entries are normalized to upper case; entries with non-letters are dropped.
package words

import (
	"bufio"
	"context"
	"errors"
	"os"
	"sort"

	"github.com/ljp-solutions/word-ladder/assets"
	"github.com/ljp-solutions/word-ladder/internal/ladder"
)

// Dictionary is an exact-match word lookup. Implementations may be local
// (List) or remote (HTTP client, Postgres).
type Dictionary interface {
	Contains(ctx context.Context, word string) (bool, error)
}

// ErrEmptyList is returned when a loaded dictionary has no usable words.
var ErrEmptyList = errors.New("words: dictionary is empty")

// List is an immutable in-memory dictionary.
type List struct {
	set  map[string]struct{}
	list []string // sorted
}

var _ Dictionary = (*List)(nil)

// NewList builds a List from raw entries.
func NewList(entries []string) *List {
	l := &List{set: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		w := ladder.Normalize(e)
		if !ladder.IsLetters(w) {
			continue
		}
		if _, dup := l.set[w]; dup {
			continue
		}
		l.set[w] = struct{}{}
		l.list = append(l.list, w)
	}
	sort.Strings(l.list)
	return l
}

// Embedded returns the dictionary shipped with the binary.
func Embedded() (*List, error) {
	entries, err := assets.WordList()
	if err != nil {
		return nil, err
	}
	l := NewList(entries)
	if l.Len() == 0 {
		return nil, ErrEmptyList
	}
	return l, nil
}

// Load reads the dictionary at path. An empty path selects the embedded list.
func Load(path string) (*List, error) {
	if path == "" {
		return Embedded()
	}
	entries, err := readWordFile(path)
	if err != nil {
		return nil, err
	}
	l := NewList(entries)
	if l.Len() == 0 {
		return nil, ErrEmptyList
	}
	return l, nil
}

// readWordFile loads one entry per line, skipping blanks and comments.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if w := ladder.Normalize(line); w != "" && w[0] != '#' {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

// Contains reports whether word is in the list. It never fails.
func (l *List) Contains(_ context.Context, word string) (bool, error) {
	return l.Has(word), nil
}

// Has is the synchronous form of Contains.
func (l *List) Has(word string) bool {
	_, ok := l.set[ladder.Normalize(word)]
	return ok
}

// Words returns the sorted word list. Callers must not modify it.
func (l *List) Words() []string { return l.list }

// Len returns the number of words loaded.
func (l *List) Len() int { return len(l.list) }
