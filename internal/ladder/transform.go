// internal/ladder/transform.go
//
// Word transformation rules for the word-ladder puzzle.
// Responsibilities:
//   - Normalize words to their canonical (trimmed, uppercase) form.
//   - Decide whether two words differ by exactly one letter substitution.
//   - Decide whether two words differ by exactly one swap of two letters.
//
// All functions here are pure and safe for concurrent use.
package ladder

import (
	"strings"
	"unicode"
)

// Normalize returns the canonical form of a word: surrounding whitespace
// removed and letters upper-cased.
func Normalize(word string) string {
	return strings.ToUpper(strings.TrimSpace(word))
}

// IsLetters reports whether w is non-empty and made only of letters.
func IsLetters(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Hamming returns the number of positions at which a and b differ after
// normalization, or -1 when their lengths differ.
func Hamming(a, b string) int {
	ar, br := []rune(Normalize(a)), []rune(Normalize(b))
	if len(ar) != len(br) {
		return -1
	}
	n := 0
	for i := range ar {
		if ar[i] != br[i] {
			n++
		}
	}
	return n
}

// IsOneLetterChange reports whether next is prev with exactly one letter
// replaced. Identical words are not a change.
func IsOneLetterChange(prev, next string) bool {
	pr, nr := []rune(Normalize(prev)), []rune(Normalize(next))
	if len(pr) != len(nr) {
		return false
	}
	diffs := 0
	for i := range pr {
		if pr[i] != nr[i] {
			diffs++
			if diffs > 1 {
				return false
			}
		}
	}
	return diffs == 1
}

// IsTwoLetterSwap reports whether next is prev with the letters at two
// positions exchanged. The positions need not be adjacent.
func IsTwoLetterSwap(prev, next string) bool {
	pr, nr := []rune(Normalize(prev)), []rune(Normalize(next))
	if len(pr) != len(nr) {
		return false
	}
	var idx []int
	for i := range pr {
		if pr[i] != nr[i] {
			idx = append(idx, i)
			if len(idx) > 2 {
				return false
			}
		}
	}
	if len(idx) != 2 {
		return false
	}
	i, j := idx[0], idx[1]
	return pr[i] == nr[j] && pr[j] == nr[i]
}

// IsLegalStep reports whether next is reachable from prev in one move.
func IsLegalStep(prev, next string) bool {
	return IsOneLetterChange(prev, next) || IsTwoLetterSwap(prev, next)
}
