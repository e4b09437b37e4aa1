// internal/play/coordinator.go
//
// Ties one day's session to its side effects.
// Responsibilities:
//   - Refuse a new session when today's play marker already exists.
//   - On completion, in order: write the play marker, update stats, submit
//     the outcome to the persistence service. A day already marked is not
//     recorded again.
//
// Local state is written first. A failed submission is logged and never
// rolls anything back.

package play

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ljp-solutions/word-ladder/internal/daily"
	"github.com/ljp-solutions/word-ladder/internal/game"
	"github.com/ljp-solutions/word-ladder/internal/stats"
)

// Outcome is what the persistence service receives.
type Outcome struct {
	Won    bool `json:"won"`
	Streak int  `json:"streak"`
	Turns  int  `json:"turns"`
}

// Submitter delivers outcomes to the persistence service.
type Submitter interface {
	SubmitOutcome(ctx context.Context, p game.Puzzle, o Outcome) error
}

// StatsRecorder is satisfied by *stats.Aggregator.
type StatsRecorder interface {
	RecordOutcome(ctx context.Context, won bool, turns int) (stats.GameStats, error)
}

// Coordinator wires sessions to the stats, play marker and submitter.
// Submitter and OnRecorded may be nil.
type Coordinator struct {
	Tracker   *daily.Tracker
	Stats     StatsRecorder
	Submitter Submitter

	// OnRecorded runs after local state was written.
	OnRecorded func(ctx context.Context, c game.Completion, s stats.GameStats)

	mu sync.Mutex // serializes completions
}

// Begin starts a session for p unless the player already finished that day,
// in which case the stored marker is returned and the session is nil.
func (c *Coordinator) Begin(ctx context.Context, p game.Puzzle, v game.Validator, opts ...game.Option) (*game.Session, *daily.PlayMarker, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	if m, ok := c.Tracker.Completed(ctx, p.Date); ok {
		return nil, &m, nil
	}
	opts = append(opts, game.WithCompletionHandler(c.complete))
	s, err := game.NewSession(p, v, opts...)
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Str("session", s.ID()).Str("date", p.Date).Msg("session started")
	return s, nil, nil
}

// complete records a finished game once per date. The marker is written
// before stats so an interrupted completion never counts a day twice.
func (c *Coordinator) complete(ctx context.Context, done game.Completion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	date := done.Puzzle.Date
	if _, ok := c.Tracker.Completed(ctx, date); ok {
		log.Warn().Str("date", date).Bool("won", done.Won).Msg("day already recorded, ignoring completion")
		return
	}
	marker := daily.PlayMarker{
		Date:  date,
		Won:   done.Won,
		Turns: done.Turns,
		Word:  done.Puzzle.TargetWord,
	}
	if err := c.Tracker.Record(ctx, marker); err != nil {
		log.Error().Err(err).Msg("record play marker")
	}

	st, err := c.Stats.RecordOutcome(ctx, done.Won, done.Turns)
	if err != nil {
		log.Error().Err(err).Msg("record stats")
	}
	if st.CurrentStreak != 0 {
		marker.Streak = st.CurrentStreak
		if err := c.Tracker.Record(ctx, marker); err != nil {
			log.Error().Err(err).Msg("record play marker streak")
		}
	}

	if c.OnRecorded != nil {
		c.OnRecorded(ctx, done, st)
	}

	if c.Submitter == nil {
		return
	}
	out := Outcome{Won: done.Won, Streak: st.CurrentStreak, Turns: done.Turns}
	if err := c.Submitter.SubmitOutcome(ctx, done.Puzzle, out); err != nil {
		log.Warn().Err(err).Str("date", date).Msg("submit outcome failed, local stats kept")
		return
	}
	log.Info().Str("date", date).Bool("won", out.Won).Int("turns", out.Turns).Msg("outcome submitted")
}
