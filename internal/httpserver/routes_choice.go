// internal/httpserver/routes_choice.go
//
// Right Today: GET /choice/today shows the device's pick (if any), POST
// locks one in. The pick is stored in the device's KV namespace.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ljp-solutions/word-ladder/internal/api"
	"github.com/ljp-solutions/word-ladder/internal/choice"
	"github.com/ljp-solutions/word-ladder/internal/store"
)

const choiceKey = "swapple_choice"

type choiceRecord struct {
	Date string      `json:"date"`
	Side choice.Side `json:"side"`
	Won  bool        `json:"won"`
}

func (s *Server) mountChoice(r chi.Router) {
	r.Get("/choice/today", s.handleChoiceGet)
	r.Post("/choice/today", s.handleChoicePost)
}

func (s *Server) loadChoice(ctx context.Context, kv store.KV, date string) (choiceRecord, bool) {
	raw, err := kv.Get(ctx, choiceKey)
	if err != nil {
		return choiceRecord{}, false
	}
	var rec choiceRecord
	if json.Unmarshal(raw, &rec) != nil || rec.Date != date {
		return choiceRecord{}, false
	}
	return rec, true
}

func (s *Server) choiceRes(rec choiceRecord, round *choice.Round) api.ChoiceRes {
	won := rec.Won
	return api.ChoiceRes{Date: rec.Date, Chosen: string(rec.Side), Winner: string(round.Winner()), Won: &won}
}

func (s *Server) handleChoiceGet(w http.ResponseWriter, r *http.Request) {
	kv := s.deviceKV(s.deviceID(w, r))
	round := choice.NewRound(s.opt.Now(), s.opt.Salt)
	if rec, ok := s.loadChoice(r.Context(), kv, round.Date); ok {
		writeJSON(w, http.StatusOK, s.choiceRes(rec, round))
		return
	}
	writeJSON(w, http.StatusOK, api.ChoiceRes{Date: round.Date})
}

func (s *Server) handleChoicePost(w http.ResponseWriter, r *http.Request) {
	var req api.ChoiceReq
	if err := decode(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, api.ErrBadJSON)
		return
	}
	side, err := choice.ParseSide(req.Side)
	if err != nil {
		writeErr(w, http.StatusBadRequest, api.ErrBadRequest)
		return
	}

	ctx := r.Context()
	kv := s.deviceKV(s.deviceID(w, r))
	round := choice.NewRound(s.opt.Now(), s.opt.Salt)

	s.choiceMu.Lock()
	defer s.choiceMu.Unlock()
	if _, ok := s.loadChoice(ctx, kv, round.Date); ok {
		writeErr(w, http.StatusConflict, api.ErrAlreadyChosen)
		return
	}

	won, err := round.Choose(side)
	if errors.Is(err, choice.ErrAlreadyChosen) {
		writeErr(w, http.StatusConflict, api.ErrAlreadyChosen)
		return
	}
	rec := choiceRecord{Date: round.Date, Side: side, Won: won}
	raw, err := json.Marshal(rec)
	if err != nil {
		log.Error().Err(err).Msg("encode choice")
		writeErr(w, http.StatusInternalServerError, api.ErrServer)
		return
	}
	if err := kv.Put(ctx, choiceKey, raw); err != nil {
		log.Error().Err(err).Msg("save choice")
		writeErr(w, http.StatusInternalServerError, api.ErrServer)
		return
	}
	writeJSON(w, http.StatusOK, s.choiceRes(rec, round))
}
