// internal/httpserver/routes_game.go
//
// Endpoints the client-side game uses:
//   - GET  /puzzle/today   → today's puzzle plus a play ticket
//   - POST /words/check    → dictionary lookup (rate limited)
//   - POST /validate-word  → full move verdict (rate limited)
//   - POST /results        → record an outcome, once per device per day
//   - GET  /stats/global   → community totals
//   - GET  /leaderboard    → fewest-turn wins for a day

package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ljp-solutions/word-ladder/internal/api"
	"github.com/ljp-solutions/word-ladder/internal/daily"
	"github.com/ljp-solutions/word-ladder/internal/ladder"
)

func (s *Server) mountGame(r chi.Router) {
	r.Get("/puzzle/today", s.handlePuzzleToday)
	r.Group(func(r chi.Router) {
		r.Use(s.limiter.middleware)
		r.Post("/words/check", s.handleWordCheck)
		r.Post("/validate-word", s.handleValidate)
	})
	r.Post("/results", s.handleResult)
	r.Get("/stats/global", s.handleGlobalStats)
	r.Get("/leaderboard", s.handleLeaderboard)
}

// handlePuzzleToday returns today's puzzle and a ticket bound to the device.
func (s *Server) handlePuzzleToday(w http.ResponseWriter, r *http.Request) {
	dev := s.deviceID(w, r)
	p, err := s.opt.Puzzles.Puzzle(r.Context(), s.today())
	if errors.Is(err, daily.ErrNoPuzzle) {
		writeErr(w, http.StatusNotFound, api.ErrNoGame)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("load puzzle")
		writeErr(w, http.StatusInternalServerError, api.ErrServer)
		return
	}
	tk, err := s.opt.Tickets.Issue(dev, p.Date)
	if err != nil {
		log.Error().Err(err).Msg("issue ticket")
		writeErr(w, http.StatusInternalServerError, api.ErrServer)
		return
	}
	writeJSON(w, http.StatusOK, api.PuzzleRes{Puzzle: p, Ticket: tk})
}

// handleWordCheck is the dictionary oracle. A backend failure is a 503 so
// callers can tell it apart from "not a word".
func (s *Server) handleWordCheck(w http.ResponseWriter, r *http.Request) {
	var req api.WordCheckReq
	if err := decode(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, api.ErrBadJSON)
		return
	}
	word := ladder.Normalize(req.Word)
	ok, err := s.oracle.Lookup(r.Context(), word)
	if err != nil {
		log.Warn().Err(err).Str("word", word).Msg("dictionary lookup failed")
		writeErr(w, http.StatusServiceUnavailable, api.ErrLookupUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, api.WordCheckRes{Word: word, Valid: ok})
}

// handleValidate runs the move validator on one step.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req api.ValidateReq
	if err := decode(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, api.ErrBadJSON)
		return
	}
	v := s.validator.Validate(r.Context(), req.PreviousWord, req.NewWord)
	writeJSON(w, http.StatusOK, api.ValidateRes{Verdict: v, Message: v.Reason.Message()})
}

// handleResult records an outcome. The ticket decides device and date, so
// a game finished before midnight can still be submitted shortly after.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	var req api.ResultReq
	if err := decode(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, api.ErrBadJSON)
		return
	}
	if req.Turns < 0 || req.Streak < 0 {
		writeErr(w, http.StatusBadRequest, api.ErrBadRequest)
		return
	}
	claims, err := s.opt.Tickets.Parse(req.Ticket)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, api.ErrBadTicket)
		return
	}
	inserted, err := s.opt.Results.InsertResult(r.Context(), daily.Result{
		DeviceID: claims.Subject,
		Date:     claims.Date,
		Won:      req.Won,
		Streak:   req.Streak,
		Turns:    req.Turns,
	})
	if err != nil {
		log.Error().Err(err).Str("device", claims.Subject).Msg("insert result")
		writeErr(w, http.StatusInternalServerError, api.ErrServer)
		return
	}
	writeJSON(w, http.StatusOK, api.ResultRes{Recorded: inserted, Duplicate: !inserted})
}

func (s *Server) dateParam(r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return s.today(), true
	}
	if _, err := daily.ParseDateKey(date); err != nil {
		return "", false
	}
	return date, true
}

func (s *Server) handleGlobalStats(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, api.ErrBadRequest)
		return
	}
	g, err := s.opt.Results.GlobalStats(r.Context(), date)
	if err != nil {
		log.Error().Err(err).Msg("global stats")
		writeErr(w, http.StatusInternalServerError, api.ErrServer)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// lbRes is returned by /leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, api.ErrBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit > 100 {
		limit = 100
	}
	rows, err := s.opt.Results.Leaderboard(r.Context(), date, limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeErr(w, http.StatusInternalServerError, api.ErrServer)
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
