package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"

	"github.com/ljp-solutions/word-ladder/internal/daily"
	"github.com/ljp-solutions/word-ladder/internal/game"
	"github.com/ljp-solutions/word-ladder/internal/ladder"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Contains reports whether word is in the words table.
func (s *Store) Contains(ctx context.Context, word string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM words WHERE word = $1)`, ladder.Normalize(word)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("lookup word: %w", err)
	}
	return ok, nil
}

// SeedWords inserts entries that are not already present and returns how
// many were added.
func (s *Store) SeedWords(ctx context.Context, entries []string) (int, error) {
	clean := lo.Uniq(lo.FilterMap(entries, func(e string, _ int) (string, bool) {
		w := ladder.Normalize(e)
		return w, ladder.IsLetters(w)
	}))
	added := 0
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, w := range clean {
			batch.Queue(`INSERT INTO words (word) VALUES ($1) ON CONFLICT DO NOTHING`, w)
		}
		br := tx.SendBatch(ctx, batch)
		for range clean {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return fmt.Errorf("seed words: %w", err)
			}
			added += int(tag.RowsAffected())
		}
		return br.Close()
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// Puzzle returns the scheduled puzzle for date, or daily.ErrNoPuzzle.
func (s *Store) Puzzle(ctx context.Context, date string) (game.Puzzle, error) {
	day, err := daily.ParseDateKey(date)
	if err != nil {
		return game.Puzzle{}, err
	}
	q, args, err := sqlBuilder.Select("start_word", "target_word").
		From("daily_puzzles").
		Where(squirrel.Expr("date = ?::date", date)).
		ToSql()
	if err != nil {
		return game.Puzzle{}, err
	}
	p := game.Puzzle{Date: date, Number: daily.GameNumber(day)}
	err = s.pool.QueryRow(ctx, q, args...).Scan(&p.StartWord, &p.TargetWord)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.Puzzle{}, daily.ErrNoPuzzle
	}
	if err != nil {
		return game.Puzzle{}, fmt.Errorf("query puzzle: %w", err)
	}
	return p.Normalized(), nil
}

// PutPuzzle schedules (or replaces) the puzzle for p.Date.
func (s *Store) PutPuzzle(ctx context.Context, p game.Puzzle) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := daily.ParseDateKey(p.Date); err != nil {
		return err
	}
	p = p.Normalized()
	q, args, err := sqlBuilder.Insert("daily_puzzles").
		Columns("date", "start_word", "target_word").
		Values(squirrel.Expr("?::date", p.Date), p.StartWord, p.TargetWord).
		Suffix("ON CONFLICT (date) DO UPDATE SET start_word = EXCLUDED.start_word, target_word = EXCLUDED.target_word").
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, q, args...)
	return err
}

// AlreadyPlayed reports whether deviceID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, deviceID, date string) (bool, error) {
	q, args, err := sqlBuilder.Select("COUNT(1)").
		From("daily_results").
		Where(squirrel.Eq{"device_id": deviceID}).
		Where(squirrel.Expr("date = ?::date", date)).
		ToSql()
	if err != nil {
		return false, err
	}
	var cnt int
	if err := s.pool.QueryRow(ctx, q, args...).Scan(&cnt); err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// InsertResult stores r unless the device already has a result for that date.
func (s *Store) InsertResult(ctx context.Context, r daily.Result) (bool, error) {
	q, args, err := sqlBuilder.Insert("daily_results").
		Columns("device_id", "date", "won", "streak", "turns").
		Values(r.DeviceID, squirrel.Expr("?::date", r.Date), r.Won, r.Streak, r.Turns).
		Suffix("ON CONFLICT (device_id, date) DO NOTHING").
		ToSql()
	if err != nil {
		return false, err
	}
	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("insert result: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GlobalStats aggregates every stored result plus the ones for date.
func (s *Store) GlobalStats(ctx context.Context, date string) (daily.GlobalStats, error) {
	var g daily.GlobalStats
	q, args, err := sqlBuilder.Select(
		"COUNT(*)",
		"COALESCE(SUM(won::int), 0)",
		"COALESCE(MAX(streak), 0)",
		"COALESCE(to_char(MAX(created_at) AT TIME ZONE 'UTC', 'YYYY-MM-DD HH24:MI:SS'), '')",
	).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE date = ?::date)", date)).
		Column(squirrel.Expr("COALESCE(SUM(won::int) FILTER (WHERE date = ?::date), 0)", date)).
		From("daily_results").
		ToSql()
	if err != nil {
		return g, err
	}
	err = s.pool.QueryRow(ctx, q, args...).
		Scan(&g.TotalGames, &g.TotalWins, &g.LongestStreak, &g.LastUpdated, &g.DailyGames, &g.DailyWins)
	if err != nil {
		return g, fmt.Errorf("query totals: %w", err)
	}
	return g, nil
}

// Leaderboard lists the day's wins, fewest turns first. Default limit is 20.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]daily.LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	q, args, err := sqlBuilder.Select("device_id", "turns", "streak").
		From("daily_results").
		Where(squirrel.Expr("date = ?::date", date)).
		Where(squirrel.Eq{"won": true}).
		OrderBy("turns ASC", "created_at ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (daily.LBRow, error) {
		var r daily.LBRow
		err := row.Scan(&r.DeviceID, &r.Turns, &r.Streak)
		return r, err
	})
}
