// Package share formats the result text a player can paste elsewhere.
package share

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/ljp-solutions/word-ladder/internal/ladder"
)

const (
	Hit  = "🟩"
	Miss = "⬜"
)

// Boxes marks each letter of guess that matches target at the same position.
func Boxes(guess, target string) string {
	g, t := []rune(ladder.Normalize(guess)), []rune(ladder.Normalize(target))
	var b strings.Builder
	for i, r := range g {
		if i < len(t) && r == t[i] {
			b.WriteString(Hit)
		} else {
			b.WriteString(Miss)
		}
	}
	return b.String()
}

// Message is the emoji grid for a finished game:
//
//	#12 4 Moves
//
//	⬜🟩⬜⬜
//	...
//	🟩🟩🟩🟩
//
// Attempts of another length than target are left out. A loss shows "X/8"
// and no final row.
func Message(number int, attempts []string, target string, won bool, turns int) string {
	n := len([]rune(ladder.Normalize(target)))
	result := "X/8"
	if won {
		result = fmt.Sprintf("%d Moves", turns)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s\n\n", number, result)
	for _, w := range lo.Filter(attempts, func(a string, _ int) bool { return len([]rune(ladder.Normalize(a))) == n }) {
		b.WriteString(Boxes(w, target))
		b.WriteByte('\n')
	}
	if won {
		b.WriteString(strings.Repeat(Hit, n))
	}
	return b.String()
}

// Summary is the short brag line.
func Summary(won bool, turns int) string {
	if !won {
		return "🎯 SWAPPLE\n\n❌ Didn't get today's word\n\n🎲 Change or swap letters to reach the target word."
	}
	unit := "turns"
	if turns == 1 {
		unit = "turn"
	}
	return fmt.Sprintf("🎯 SWAPPLE\n\n✅ I took %d %s!\n\n🎲 Change or swap letters to reach the target word.\n\nLet's see if you can beat me!", turns, unit)
}
