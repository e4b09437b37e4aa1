// Package assets embeds the default dictionary, the fallback puzzle list and
// the SQLite schema migrations.
package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed words.txt puzzles.txt sql/*.sql
var FS embed.FS

// readLines returns the non-empty, non-comment lines of an embedded file,
// upper-cased.
func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToUpper(s))
	}
	return out, sc.Err()
}

// WordList returns the embedded dictionary, one word per entry.
func WordList() ([]string, error) {
	return readLines("words.txt")
}

// PuzzleLines returns the embedded "START TARGET" puzzle pairs.
func PuzzleLines() ([]string, error) {
	return readLines("puzzles.txt")
}

// Migrations exposes the SQLite migration files rooted at "sql".
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		// The directory is embedded at compile time.
		panic(err)
	}
	return sub
}
