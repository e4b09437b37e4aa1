// internal/stats/stats.go
//
// Cumulative player statistics.
// Responsibilities:
//   - Define GameStats and its default shape (buckets "3".."7" and "8+").
//   - Decode stored records: current versioned schema, or the legacy
//     versionless blob with per-field numeric coercion.
//   - Repair counters that break the invariants after decoding.
//
// Any decoding failure yields defaults; it is never fatal.

package stats

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/samber/lo"
)

// StorageKey is the local-store key of the stats record.
const StorageKey = "swapple_gameStats"

// SchemaVersion is written into every saved record.
const SchemaVersion = 1

// OverflowBucket collects every win that took this many turns or more.
const OverflowBucket = 8

// DefaultBuckets are always present in TurnDistribution.
var DefaultBuckets = []string{"3", "4", "5", "6", "7", "8+"}

// GameStats are the cumulative stats of one player.
type GameStats struct {
	CurrentStreak    int            `json:"currentStreak"`
	BestStreak       int            `json:"bestStreak"`
	TotalGames       int            `json:"totalGames"`
	TotalWins        int            `json:"totalWins"`
	TurnDistribution map[string]int `json:"turnDistribution"`
}

// Defaults returns zeroed stats with every default bucket present.
func Defaults() GameStats {
	return GameStats{
		TurnDistribution: lo.SliceToMap(DefaultBuckets, func(b string) (string, int) { return b, 0 }),
	}
}

// Bucket is the histogram label for a win in turns. A win takes at least
// one turn, so smaller values land in "1".
func Bucket(turns int) string {
	turns = max(turns, 1)
	if turns >= OverflowBucket {
		return "8+"
	}
	return strconv.Itoa(turns)
}

// WinRate is the rounded win percentage, 0 when no games were played.
func WinRate(wins, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(wins) / float64(total) * 100))
}

// WinRate for these stats.
func (s GameStats) WinRate() int { return WinRate(s.TotalWins, s.TotalGames) }

// Clone returns a deep copy.
func (s GameStats) Clone() GameStats {
	c := s
	c.TurnDistribution = lo.Assign(map[string]int{}, s.TurnDistribution)
	return c
}

type record struct {
	Version int `json:"version"`
	GameStats
}

// Encode serializes stats in the current versioned schema.
func Encode(s GameStats) ([]byte, error) {
	return json.Marshal(record{Version: SchemaVersion, GameStats: s})
}

// Decode parses a stored record. ok is false when raw could not be used and
// defaults were returned.
func Decode(raw []byte) (GameStats, bool) {
	var probe map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &probe) != nil || probe == nil {
		return Defaults(), false
	}

	var s GameStats
	if v, has := probe["version"]; has && number(v) == SchemaVersion {
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return Defaults(), false
		}
		s = rec.GameStats
	} else {
		s = migrateLegacy(probe)
	}
	return repair(s), true
}

// migrateLegacy reads the versionless blob field by field. Fields that are
// missing or not numeric become 0.
func migrateLegacy(probe map[string]json.RawMessage) GameStats {
	s := GameStats{
		CurrentStreak: number(probe["currentStreak"]),
		BestStreak:    number(probe["bestStreak"]),
		TotalGames:    number(probe["totalGames"]),
		TotalWins:     number(probe["totalWins"]),
	}
	var dist map[string]json.RawMessage
	if json.Unmarshal(probe["turnDistribution"], &dist) == nil {
		s.TurnDistribution = lo.MapValues(dist, func(v json.RawMessage, _ string) int { return number(v) })
	}
	return s
}

// number coerces a JSON value to a non-negative int: numbers and numeric
// strings are accepted, anything else is 0.
func number(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var str string
		if json.Unmarshal(raw, &str) != nil {
			return 0
		}
		if f, err = strconv.ParseFloat(str, 64); err != nil {
			return 0
		}
	}
	if math.IsNaN(f) || f <= 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// repair clamps negatives and restores the cross-field invariants.
func repair(s GameStats) GameStats {
	dist := Defaults().TurnDistribution
	for k, v := range s.TurnDistribution {
		dist[k] = max(v, 0)
	}
	s.TurnDistribution = dist

	s.CurrentStreak = max(s.CurrentStreak, 0)
	s.BestStreak = max(s.BestStreak, s.CurrentStreak)
	s.TotalWins = max(s.TotalWins, lo.Sum(lo.Values(dist)))
	s.TotalGames = max(s.TotalGames, s.TotalWins)
	return s
}
