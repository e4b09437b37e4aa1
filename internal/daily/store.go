// internal/daily/store.go
//
// SQLite repository for daily puzzles and results.
// Responsibilities:
//   - Scheduled puzzles per date (daily_puzzles), overriding the rotation.
//   - One result per device per day (daily_results, UNIQUE(device_id, date)).
//   - Aggregates for the global stats panel and the daily leaderboard.

package daily

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/ljp-solutions/word-ladder/internal/game"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Result is one device's outcome for one day.
type Result struct {
	DeviceID string `json:"deviceId"`
	Date     string `json:"date"`
	Won      bool   `json:"won"`
	Streak   int    `json:"streak"`
	Turns    int    `json:"turns"`
}

// GlobalStats is the community summary shown next to personal stats.
type GlobalStats struct {
	TotalGames    int    `json:"total_games"`
	TotalWins     int    `json:"total_wins"`
	LongestStreak int    `json:"longest_streak"`
	DailyGames    int    `json:"daily_games"`
	DailyWins     int    `json:"daily_wins"`
	LastUpdated   string `json:"last_updated"`
}

// LBRow is one leaderboard entry.
type LBRow struct {
	DeviceID string `json:"deviceId"`
	Turns    int    `json:"turns"`
	Streak   int    `json:"streak"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Puzzle returns the scheduled puzzle for date, or ErrNoPuzzle.
func (s *Store) Puzzle(ctx context.Context, date string) (game.Puzzle, error) {
	q, args, err := sqlBuilder.Select("start_word", "target_word").
		From("daily_puzzles").
		Where(squirrel.Eq{"date": date}).
		ToSql()
	if err != nil {
		return game.Puzzle{}, err
	}
	p := game.Puzzle{Date: date}
	err = s.db.QueryRowContext(ctx, q, args...).Scan(&p.StartWord, &p.TargetWord)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Puzzle{}, ErrNoPuzzle
	}
	if err != nil {
		return game.Puzzle{}, fmt.Errorf("query puzzle: %w", err)
	}
	if day, err := ParseDateKey(date); err == nil {
		p.Number = GameNumber(day)
	}
	return p.Normalized(), nil
}

// PutPuzzle schedules (or replaces) the puzzle for p.Date.
func (s *Store) PutPuzzle(ctx context.Context, p game.Puzzle) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := ParseDateKey(p.Date); err != nil {
		return err
	}
	p = p.Normalized()
	q, args, err := sqlBuilder.Insert("daily_puzzles").
		Columns("date", "start_word", "target_word").
		Values(p.Date, p.StartWord, p.TargetWord).
		Suffix("ON CONFLICT(date) DO UPDATE SET start_word = excluded.start_word, target_word = excluded.target_word").
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}

// AlreadyPlayed reports whether deviceID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, deviceID, date string) (bool, error) {
	q, args, err := sqlBuilder.Select("COUNT(1)").
		From("daily_results").
		Where(squirrel.Eq{"device_id": deviceID, "date": date}).
		ToSql()
	if err != nil {
		return false, err
	}
	var cnt int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&cnt); err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// InsertResult stores r unless the device already has a result for that
// date. inserted is false for the duplicate case.
func (s *Store) InsertResult(ctx context.Context, r Result) (inserted bool, err error) {
	q, args, err := sqlBuilder.Insert("daily_results").
		Options("OR IGNORE").
		Columns("device_id", "date", "won", "streak", "turns").
		Values(r.DeviceID, r.Date, r.Won, r.Streak, r.Turns).
		ToSql()
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("insert result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GlobalStats aggregates every stored result plus the ones for date.
func (s *Store) GlobalStats(ctx context.Context, date string) (GlobalStats, error) {
	var g GlobalStats
	q, args, err := sqlBuilder.Select(
		"COUNT(*)",
		"COALESCE(SUM(won), 0)",
		"COALESCE(MAX(streak), 0)",
		"COALESCE(MAX(created_at), '')",
	).From("daily_results").ToSql()
	if err != nil {
		return g, err
	}
	if err := s.db.QueryRowContext(ctx, q, args...).
		Scan(&g.TotalGames, &g.TotalWins, &g.LongestStreak, &g.LastUpdated); err != nil {
		return g, fmt.Errorf("query totals: %w", err)
	}

	q, args, err = sqlBuilder.Select("COUNT(*)", "COALESCE(SUM(won), 0)").
		From("daily_results").
		Where(squirrel.Eq{"date": date}).
		ToSql()
	if err != nil {
		return g, err
	}
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&g.DailyGames, &g.DailyWins); err != nil {
		return g, fmt.Errorf("query daily totals: %w", err)
	}
	return g, nil
}

// Leaderboard lists the day's wins, fewest turns first. Default limit is 20.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	q, args, err := sqlBuilder.Select("device_id", "turns", "streak").
		From("daily_results").
		Where(squirrel.Eq{"date": date, "won": true}).
		OrderBy("turns ASC", "created_at ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.DeviceID, &r.Turns, &r.Streak); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
