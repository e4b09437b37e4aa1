// Package api holds the JSON payloads shared by the HTTP server and client.
package api

import (
	"github.com/ljp-solutions/word-ladder/internal/daily"
	"github.com/ljp-solutions/word-ladder/internal/game"
	"github.com/ljp-solutions/word-ladder/internal/move"
)

// DeviceHeader carries the caller's device id. The anonymous cookie is the fallback.
const DeviceHeader = "X-Device-ID"

// Error codes used in {"error": code} bodies.
const (
	ErrBadJSON           = "bad_json"
	ErrNoGame            = "no_game"
	ErrNotFound          = "not_found"
	ErrLookupUnavailable = "lookup_unavailable"
	ErrBadTicket         = "bad_ticket"
	ErrRateLimited       = "rate_limited"
	ErrServer            = "server_error"
	ErrAlreadyChosen     = "already_chosen"
	ErrBadRequest        = "bad_request"
	ErrGameOver          = "game_over"
	ErrMoveInProgress    = "move_in_progress"
	ErrNoSession         = "no_session"
)

type ErrorRes struct {
	Error string `json:"error"`
}

type PuzzleRes struct {
	game.Puzzle
	Ticket string `json:"ticket"`
}

type WordCheckReq struct {
	Word string `json:"word"`
}

type WordCheckRes struct {
	Word  string `json:"word"`
	Valid bool   `json:"valid"`
}

type ValidateReq struct {
	PreviousWord string `json:"previousWord"`
	NewWord      string `json:"newWord"`
}

type ValidateRes struct {
	move.Verdict
	Message string `json:"message,omitempty"`
}

type ResultReq struct {
	Won    bool   `json:"won"`
	Streak int    `json:"streak"`
	Turns  int    `json:"turns"`
	Ticket string `json:"ticket"`
}

type ResultRes struct {
	Recorded  bool `json:"recorded"`
	Duplicate bool `json:"duplicate"`
}

type DailyNewRes struct {
	GameID string            `json:"gameId,omitempty"`
	Date   string            `json:"date"`
	Played bool              `json:"played"`
	Puzzle game.Puzzle       `json:"puzzle"`
	State  *game.Snapshot    `json:"state,omitempty"`
	Marker *daily.PlayMarker `json:"marker,omitempty"`
}

type DailyMoveReq struct {
	GameID string `json:"gameId"`
	Word   string `json:"word"`
}

type DailyMoveRes struct {
	game.MoveResult
	Message string `json:"message,omitempty"`
	Share   string `json:"share,omitempty"` // set once the game is over
}

type ChoiceReq struct {
	Side string `json:"side"`
}

type ChoiceRes struct {
	Date   string `json:"date"`
	Chosen string `json:"chosen,omitempty"`
	Winner string `json:"winner,omitempty"` // only after choosing
	Won    *bool  `json:"won,omitempty"`
}
