// internal/httpserver/routes_daily.go
//
// HTTP routes for server-side daily play.
// Exposes three endpoints under /daily:
//   - POST /daily/new    → start today's game (creates or reuses session)
//   - POST /daily/move   → submit the next word for today's game
//   - GET  /daily/stats  → the device's cumulative stats
//
// Each device plays once per day: the play marker lives in the device's KV
// namespace and the result row is unique per (device, date).
// Sessions are held in memory for active play; stats, marker and result are
// written when the game ends.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/ljp-solutions/word-ladder/internal/api"
	"github.com/ljp-solutions/word-ladder/internal/daily"
	"github.com/ljp-solutions/word-ladder/internal/game"
	"github.com/ljp-solutions/word-ladder/internal/play"
	"github.com/ljp-solutions/word-ladder/internal/share"
	"github.com/ljp-solutions/word-ladder/internal/stats"
)

// dailyServer holds active sessions.
type dailyServer struct {
	srv      *Server
	sessions map[string]*game.Session // keyed by deviceID|date
	mu       sync.Mutex               // guards sessions
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	s.daily = &dailyServer{srv: s, sessions: make(map[string]*game.Session)}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.daily.handleNew)
		r.Post("/move", s.daily.handleMove)
		r.Get("/stats", s.daily.handleStats)
	})
}

// resultSink submits a finished game to the result store for one device.
type resultSink struct {
	results  ResultStore
	deviceID string
}

func (rs resultSink) SubmitOutcome(ctx context.Context, p game.Puzzle, o play.Outcome) error {
	_, err := rs.results.InsertResult(ctx, daily.Result{
		DeviceID: rs.deviceID, Date: p.Date, Won: o.Won, Streak: o.Streak, Turns: o.Turns,
	})
	return err
}

func (d *dailyServer) coordinator(deviceID string) *play.Coordinator {
	kv := d.srv.deviceKV(deviceID)
	return &play.Coordinator{
		Tracker:   daily.NewTracker(kv),
		Stats:     stats.NewAggregator(kv),
		Submitter: resultSink{results: d.srv.opt.Results, deviceID: deviceID},
	}
}

// prune drops sessions from earlier days. Caller holds d.mu.
func (d *dailyServer) prune() {
	now := d.srv.opt.Now()
	for k, sess := range d.sessions {
		if sess.Expired(now) {
			delete(d.sessions, k)
		}
	}
}

// -----------------------------------------------------------------------------
// /daily/new

// handleNew creates or reuses a session for the current date.
//   - Device already finished today → Played=true with the marker.
//   - Otherwise create/reuse an in-memory session and return its state.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dev := d.srv.deviceID(w, r)
	date := d.srv.today()

	p, err := d.srv.opt.Puzzles.Puzzle(ctx, date)
	if errors.Is(err, daily.ErrNoPuzzle) {
		writeErr(w, http.StatusNotFound, api.ErrNoGame)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("load puzzle")
		writeErr(w, http.StatusInternalServerError, api.ErrServer)
		return
	}

	key := dev + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prune()

	if sess, ok := d.sessions[key]; ok {
		snap := sess.Snapshot()
		writeJSON(w, http.StatusOK, api.DailyNewRes{GameID: snap.ID, Date: date, Puzzle: p, State: &snap,
			Played: snap.Status.Terminal()})
		return
	}

	sess, marker, err := d.coordinator(dev).Begin(ctx, p, d.srv.validator, game.WithMaxTurns(d.srv.opt.MaxTurns))
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("start session")
		writeErr(w, http.StatusInternalServerError, api.ErrServer)
		return
	}
	if marker != nil {
		writeJSON(w, http.StatusOK, api.DailyNewRes{Date: date, Played: true, Puzzle: p, Marker: marker})
		return
	}
	if played, err := d.srv.opt.Results.AlreadyPlayed(ctx, dev, date); err == nil && played {
		writeJSON(w, http.StatusOK, api.DailyNewRes{Date: date, Played: true, Puzzle: p})
		return
	}

	d.sessions[key] = sess
	snap := sess.Snapshot()
	writeJSON(w, http.StatusOK, api.DailyNewRes{GameID: snap.ID, Date: date, Puzzle: p, State: &snap})
}

// -----------------------------------------------------------------------------
// /daily/move

// handleMove applies one word to the device's session.
//   - Unknown session or stale game id → 409 no_session.
//   - Finished game → 409 game_over.
//   - Rejected move → 200 with accepted=false and the reason.
func (d *dailyServer) handleMove(w http.ResponseWriter, r *http.Request) {
	dev := d.srv.deviceID(w, r)

	var req api.DailyMoveReq
	if err := decode(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, api.ErrBadJSON)
		return
	}

	key := dev + "|" + d.srv.today()
	d.mu.Lock()
	sess, ok := d.sessions[key]
	d.mu.Unlock()
	if !ok || sess.ID() != req.GameID {
		writeErr(w, http.StatusConflict, api.ErrNoSession)
		return
	}

	res, err := sess.SubmitMove(r.Context(), req.Word)
	switch {
	case errors.Is(err, game.ErrGameOver):
		writeErr(w, http.StatusConflict, api.ErrGameOver)
		return
	case errors.Is(err, game.ErrMoveInProgress):
		writeErr(w, http.StatusConflict, api.ErrMoveInProgress)
		return
	case errors.Is(err, game.ErrEmptyWord):
		writeErr(w, http.StatusBadRequest, api.ErrBadRequest)
		return
	case err != nil:
		log.Error().Err(err).Msg("submit move")
		writeErr(w, http.StatusInternalServerError, api.ErrServer)
		return
	}

	out := api.DailyMoveRes{MoveResult: res, Message: res.Verdict.Reason.Message()}
	if res.Completed {
		snap := sess.Snapshot()
		won := snap.Status == game.StatusWon
		attempts := lo.Map(snap.Attempts, func(a game.Attempt, _ int) string { return a.Word })
		if won {
			// the solved row is added by share.Message
			attempts = attempts[:len(attempts)-1]
		}
		out.Share = share.Message(snap.Puzzle.Number, attempts, snap.Puzzle.TargetWord, won, snap.TurnsTaken)
	}
	writeJSON(w, http.StatusOK, out)
}

// -----------------------------------------------------------------------------
// /daily/stats

type statsRes struct {
	stats.GameStats
	WinRate int `json:"winRate"`
}

func (d *dailyServer) handleStats(w http.ResponseWriter, r *http.Request) {
	dev := d.srv.deviceID(w, r)
	st := stats.NewAggregator(d.srv.deviceKV(dev)).Load(r.Context())
	writeJSON(w, http.StatusOK, statsRes{GameStats: st, WinRate: st.WinRate()})
}
