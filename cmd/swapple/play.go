package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/ljp-solutions/word-ladder/internal/client"
	"github.com/ljp-solutions/word-ladder/internal/daily"
	"github.com/ljp-solutions/word-ladder/internal/game"
	"github.com/ljp-solutions/word-ladder/internal/move"
	"github.com/ljp-solutions/word-ladder/internal/play"
	"github.com/ljp-solutions/word-ladder/internal/share"
	"github.com/ljp-solutions/word-ladder/internal/stats"
	"github.com/ljp-solutions/word-ladder/internal/store"
	"github.com/ljp-solutions/word-ladder/internal/words"
)

const deviceKey = "swapple_deviceId"

const howToPlay = `HOW TO PLAY
  Reach the target word from the start word.
  Each move either changes exactly one letter
  or swaps two letters. Every word must be real.
  Type "quit" to stop; progress of a finished day is kept.
`

// app is one terminal play session and its collaborators.
type app struct {
	dict      words.Dictionary
	puzzles   daily.PuzzleSource
	submitter play.Submitter // nil offline
	kv        store.KV
	now       func() time.Time
	maxTurns  int
	strict    bool
}

func newApp(ctx context.Context, cfg *Config) (*app, error) {
	kv, err := store.NewFileDir(cfg.dataDir)
	if err != nil {
		return nil, err
	}
	a := &app{kv: kv, now: time.Now, maxTurns: cfg.maxTurns, strict: cfg.strict}

	if cfg.server == "" {
		list, err := words.Load(cfg.wordsFile)
		if err != nil {
			return nil, fmt.Errorf("load words: %w", err)
		}
		rotation, err := daily.EmbeddedRotation(cfg.salt, list.Has)
		if err != nil {
			return nil, err
		}
		a.dict, a.puzzles = list, rotation
		log.Debug().Int("words", list.Len()).Int("puzzles", rotation.Len()).Msg("offline mode")
		return a, nil
	}

	device, err := deviceID(ctx, kv, cfg.device)
	if err != nil {
		return nil, err
	}
	c := client.New(cfg.server, device)
	a.dict, a.puzzles, a.submitter = c, c, c
	log.Debug().Str("server", cfg.server).Str("device", device).Msg("online mode")
	return a, nil
}

// deviceID returns id, or the one saved in kv, generating and saving it on first use.
func deviceID(ctx context.Context, kv store.KV, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	raw, err := kv.Get(ctx, deviceKey)
	if err == nil && len(raw) > 0 {
		return string(raw), nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	id = uuid.NewString()
	return id, kv.Put(ctx, deviceKey, []byte(id))
}

func (a *app) play(ctx context.Context, in io.Reader, out io.Writer) error {
	tracker := daily.NewTracker(a.kv)
	agg := stats.NewAggregator(a.kv)
	now := a.now()

	if tracker.FirstVisit(ctx) {
		fmt.Fprint(out, howToPlay)
		if err := tracker.MarkVisited(ctx); err != nil {
			log.Warn().Err(err).Msg("save first visit")
		}
	}

	p, err := a.puzzles.Puzzle(ctx, daily.DateKey(now))
	if errors.Is(err, daily.ErrNoPuzzle) {
		fmt.Fprintln(out, "No game available today.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load today's puzzle: %w", err)
	}

	co := &play.Coordinator{
		Tracker:   tracker,
		Stats:     agg,
		Submitter: a.submitter,
		OnRecorded: func(_ context.Context, c game.Completion, st stats.GameStats) {
			printResult(out, c, st)
		},
	}

	var vopts []move.Option
	if a.strict {
		vopts = append(vopts, move.WithStrictLookup())
	}
	sess, marker, err := co.Begin(ctx, p, move.NewValidator(words.NewOracle(a.dict), vopts...), game.WithMaxTurns(a.maxTurns))
	if err != nil {
		return err
	}
	if marker != nil {
		fmt.Fprintln(out, "You already played today.")
		fmt.Fprintln(out, share.Summary(marker.Won, marker.Turns))
		printStats(out, agg.Load(ctx))
		printCountdown(out, a.now())
		return nil
	}

	fmt.Fprintf(out, "Swapple #%d: %s → %s", p.Number, p.StartWord, p.TargetWord)
	if p.Par > 0 {
		fmt.Fprintf(out, " (par %d)", p.Par)
	}
	fmt.Fprintln(out)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s > ", sess.Snapshot().CurrentWord())
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if strings.EqualFold(line, "quit") {
			return nil
		}
		if line == "" {
			continue
		}

		res, err := sess.SubmitMove(ctx, line)
		if err != nil {
			return err
		}
		if !res.Accepted {
			fmt.Fprintln(out, res.Verdict.Reason.Message())
			continue
		}
		if res.Completed {
			printCountdown(out, a.now())
			return nil
		}
	}
}

func printResult(out io.Writer, c game.Completion, st stats.GameStats) {
	attempts := lo.Map(c.Attempts, func(a game.Attempt, _ int) string { return a.Word })
	if c.Won {
		attempts = attempts[:len(attempts)-1]
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, share.Summary(c.Won, c.Turns))
	fmt.Fprintln(out)
	fmt.Fprintln(out, share.Message(c.Puzzle.Number, attempts, c.Puzzle.TargetWord, c.Won, c.Turns))
	fmt.Fprintln(out)
	printStats(out, st)
}

func printStats(out io.Writer, st stats.GameStats) {
	fmt.Fprintf(out, "Played %d  Win %d%%  Streak %d  Best %d\n",
		st.TotalGames, st.WinRate(), st.CurrentStreak, st.BestStreak)
	buckets := lo.Keys(st.TurnDistribution)
	sort.Strings(buckets)
	for _, b := range buckets {
		fmt.Fprintf(out, "  %-3s %s %d\n", b, strings.Repeat("■", st.TurnDistribution[b]), st.TurnDistribution[b])
	}
}

func printCountdown(out io.Writer, now time.Time) {
	left := daily.UntilReset(now).Truncate(time.Second)
	h := int(left.Hours())
	m := int(left.Minutes()) % 60
	s := int(left.Seconds()) % 60
	fmt.Fprintf(out, "Next puzzle in %02d:%02d:%02d\n", h, m, s)
}
