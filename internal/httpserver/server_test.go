package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ljp-solutions/word-ladder/internal/api"
	"github.com/ljp-solutions/word-ladder/internal/daily"
	"github.com/ljp-solutions/word-ladder/internal/httpserver"
	"github.com/ljp-solutions/word-ladder/internal/store"
	"github.com/ljp-solutions/word-ladder/internal/testutil"
	"github.com/ljp-solutions/word-ladder/internal/ticket"
	"github.com/ljp-solutions/word-ladder/internal/words"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func newOptions(t *testing.T) httpserver.Options {
	conn := testutil.NewTestDB(t)
	dict := words.NewList([]string{"CART", "CARD", "CARE"})
	return httpserver.Options{
		Dict:      dict,
		Puzzles:   daily.NewRotation([]daily.Pair{{Start: "CART", Target: "CARE"}}, "salt", dict.Has),
		Results:   daily.NewStore(conn),
		KV:        store.NewSQLite(conn),
		Tickets:   ticket.NewIssuer("secret", ticket.WithClock(clock)),
		Salt:      "salt",
		RateLimit: 1000,
		Burst:     1000,
		Now:       clock,
	}
}

func newServer(t *testing.T, mods ...func(*httpserver.Options)) *httpserver.Server {
	opt := newOptions(t)
	for _, m := range mods {
		m(&opt)
	}
	return httpserver.New(opt)
}

func call(t *testing.T, s *httpserver.Server, method, path, device string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if device != "" {
		req.Header.Set(api.DeviceHeader, device)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndNotFound(t *testing.T) {
	s := newServer(t)
	rec := call(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = call(t, s, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, api.ErrNotFound, decodeBody[map[string]string](t, rec)["error"])
}

func TestPuzzleToday(t *testing.T) {
	s := newServer(t)
	rec := call(t, s, http.MethodGet, "/puzzle/today", "dev-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeBody[api.PuzzleRes](t, rec)
	assert.Equal(t, "2025-03-01", res.Date)
	assert.Equal(t, 60, res.Number)
	assert.Equal(t, "CART", res.StartWord)
	assert.Equal(t, "CARE", res.TargetWord)
	assert.Equal(t, 1, res.Par)
	assert.NotEmpty(t, res.Ticket)
}

func TestPuzzleToday_NoGame(t *testing.T) {
	s := newServer(t, func(o *httpserver.Options) { o.Puzzles = daily.NewRotation(nil, "salt", nil) })
	rec := call(t, s, http.MethodGet, "/puzzle/today", "dev-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"no_game"}`, rec.Body.String())
}

func TestPuzzleToday_SetsAnonCookie(t *testing.T) {
	rec := call(t, newServer(t), http.MethodGet, "/puzzle/today", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "swapple_anon=")
}

type downDict struct{}

func (downDict) Contains(context.Context, string) (bool, error) { return false, errors.New("db down") }

func TestWordCheck(t *testing.T) {
	s := newServer(t)
	rec := call(t, s, http.MethodPost, "/words/check", "", api.WordCheckReq{Word: "card"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, api.WordCheckRes{Word: "CARD", Valid: true}, decodeBody[api.WordCheckRes](t, rec))

	rec = call(t, s, http.MethodPost, "/words/check", "", api.WordCheckReq{Word: "CARX"})
	assert.False(t, decodeBody[api.WordCheckRes](t, rec).Valid)

	down := newServer(t, func(o *httpserver.Options) { o.Dict = downDict{} })
	rec = call(t, down, http.MethodPost, "/words/check", "", api.WordCheckReq{Word: "CARD"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"lookup_unavailable"}`, rec.Body.String())
}

func TestWordCheck_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/words/check", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	newServer(t).Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateWord(t *testing.T) {
	s := newServer(t)
	rec := call(t, s, http.MethodPost, "/validate-word", "", api.ValidateReq{PreviousWord: "CART", NewWord: "CURB"})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[api.ValidateRes](t, rec)
	assert.False(t, res.Valid)
	assert.Equal(t, "too_many_changes", string(res.Reason))
	assert.NotEmpty(t, res.Message)

	rec = call(t, s, http.MethodPost, "/validate-word", "", api.ValidateReq{PreviousWord: "cart", NewWord: "card"})
	assert.True(t, decodeBody[api.ValidateRes](t, rec).Valid)
}

func TestValidateWord_StrictLookup(t *testing.T) {
	s := newServer(t, func(o *httpserver.Options) { o.Dict = downDict{}; o.StrictLookup = true })
	rec := call(t, s, http.MethodPost, "/validate-word", "", api.ValidateReq{PreviousWord: "CART", NewWord: "CARD"})
	assert.Equal(t, "lookup_unavailable", string(decodeBody[api.ValidateRes](t, rec).Reason))
}

func TestRateLimit(t *testing.T) {
	s := newServer(t, func(o *httpserver.Options) { o.RateLimit = 0.001; o.Burst = 1 })
	assert.Equal(t, http.StatusOK, call(t, s, http.MethodPost, "/words/check", "", api.WordCheckReq{Word: "CARD"}).Code)
	rec := call(t, s, http.MethodPost, "/words/check", "", api.WordCheckReq{Word: "CARD"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	// other routes are not limited
	assert.Equal(t, http.StatusOK, call(t, s, http.MethodGet, "/health", "", nil).Code)
}

func TestResults_OncePerTicket(t *testing.T) {
	s := newServer(t)
	tk := decodeBody[api.PuzzleRes](t, call(t, s, http.MethodGet, "/puzzle/today", "dev-1", nil)).Ticket

	rec := call(t, s, http.MethodPost, "/results", "dev-1", api.ResultReq{Won: true, Streak: 2, Turns: 4, Ticket: tk})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, api.ResultRes{Recorded: true}, decodeBody[api.ResultRes](t, rec))

	rec = call(t, s, http.MethodPost, "/results", "dev-1", api.ResultReq{Won: true, Streak: 2, Turns: 3, Ticket: tk})
	assert.Equal(t, api.ResultRes{Duplicate: true}, decodeBody[api.ResultRes](t, rec))

	g := decodeBody[daily.GlobalStats](t, call(t, s, http.MethodGet, "/stats/global", "", nil))
	assert.Equal(t, 1, g.TotalGames)
	assert.Equal(t, 1, g.DailyWins)
	assert.Equal(t, 2, g.LongestStreak)
}

func TestResults_BadTicket(t *testing.T) {
	rec := call(t, newServer(t), http.MethodPost, "/results", "dev-1", api.ResultReq{Won: true, Turns: 4, Ticket: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"bad_ticket"}`, rec.Body.String())
}

func TestStatsGlobal_BadDate(t *testing.T) {
	rec := call(t, newServer(t), http.MethodGet, "/stats/global?date=yesterday", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDailyFlow(t *testing.T) {
	s := newServer(t)

	started := decodeBody[api.DailyNewRes](t, call(t, s, http.MethodPost, "/daily/new", "dev-1", nil))
	require.NotEmpty(t, started.GameID)
	assert.False(t, started.Played)
	assert.Equal(t, "CART", started.Puzzle.StartWord)

	// same device and day reuses the session
	again := decodeBody[api.DailyNewRes](t, call(t, s, http.MethodPost, "/daily/new", "dev-1", nil))
	assert.Equal(t, started.GameID, again.GameID)

	rec := call(t, s, http.MethodPost, "/daily/move", "dev-1", api.DailyMoveReq{GameID: started.GameID, Word: "CURB"})
	require.Equal(t, http.StatusOK, rec.Code)
	mv := decodeBody[api.DailyMoveRes](t, rec)
	assert.False(t, mv.Accepted)
	assert.Equal(t, "too_many_changes", string(mv.Verdict.Reason))

	mv = decodeBody[api.DailyMoveRes](t, call(t, s, http.MethodPost, "/daily/move", "dev-1", api.DailyMoveReq{GameID: started.GameID, Word: "card"}))
	assert.True(t, mv.Accepted)
	assert.Equal(t, "playing", string(mv.Status))

	mv = decodeBody[api.DailyMoveRes](t, call(t, s, http.MethodPost, "/daily/move", "dev-1", api.DailyMoveReq{GameID: started.GameID, Word: "CARE"}))
	assert.True(t, mv.Completed)
	assert.Equal(t, "won", string(mv.Status))
	assert.Equal(t, "#60 2 Moves\n\n🟩🟩🟩⬜\n🟩🟩🟩🟩", mv.Share)

	rec = call(t, s, http.MethodPost, "/daily/move", "dev-1", api.DailyMoveReq{GameID: started.GameID, Word: "CARD"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"game_over"}`, rec.Body.String())

	st := decodeBody[map[string]any](t, call(t, s, http.MethodGet, "/daily/stats", "dev-1", nil))
	assert.EqualValues(t, 1, st["totalWins"])
	assert.EqualValues(t, 100, st["winRate"])

	g := decodeBody[daily.GlobalStats](t, call(t, s, http.MethodGet, "/stats/global", "", nil))
	assert.Equal(t, 1, g.DailyGames)
}

func TestDailyNew_AfterRestartUsesMarker(t *testing.T) {
	opt := newOptions(t)
	s := httpserver.New(opt)

	started := decodeBody[api.DailyNewRes](t, call(t, s, http.MethodPost, "/daily/new", "dev-1", nil))
	call(t, s, http.MethodPost, "/daily/move", "dev-1", api.DailyMoveReq{GameID: started.GameID, Word: "CARE"})

	// a fresh server over the same storage has no sessions in memory
	restarted := httpserver.New(opt)
	res := decodeBody[api.DailyNewRes](t, call(t, restarted, http.MethodPost, "/daily/new", "dev-1", nil))
	assert.True(t, res.Played)
	require.NotNil(t, res.Marker)
	assert.Equal(t, 1, res.Marker.Turns)
	assert.Equal(t, "CARE", res.Marker.Word)

	// a different device still gets a game
	other := decodeBody[api.DailyNewRes](t, call(t, restarted, http.MethodPost, "/daily/new", "dev-2", nil))
	assert.False(t, other.Played)
}

func TestDailyMove_UnknownSession(t *testing.T) {
	rec := call(t, newServer(t), http.MethodPost, "/daily/move", "dev-1", api.DailyMoveReq{GameID: "nope", Word: "CARD"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"no_session"}`, rec.Body.String())
}

func TestDailyNew_MaxTurnsLoss(t *testing.T) {
	s := newServer(t, func(o *httpserver.Options) { o.MaxTurns = 1 })
	started := decodeBody[api.DailyNewRes](t, call(t, s, http.MethodPost, "/daily/new", "dev-1", nil))
	mv := decodeBody[api.DailyMoveRes](t, call(t, s, http.MethodPost, "/daily/move", "dev-1", api.DailyMoveReq{GameID: started.GameID, Word: "CARD"}))
	assert.Equal(t, "lost", string(mv.Status))
	assert.Equal(t, "#60 X/8\n\n🟩🟩🟩⬜\n", mv.Share)
}

func TestChoice(t *testing.T) {
	s := newServer(t)

	res := decodeBody[api.ChoiceRes](t, call(t, s, http.MethodGet, "/choice/today", "dev-1", nil))
	assert.Equal(t, "2025-03-01", res.Date)
	assert.Empty(t, res.Chosen)
	assert.Empty(t, res.Winner)

	rec := call(t, s, http.MethodPost, "/choice/today", "dev-1", api.ChoiceReq{Side: "left"})
	require.Equal(t, http.StatusOK, rec.Code)
	res = decodeBody[api.ChoiceRes](t, rec)
	assert.Equal(t, "left", res.Chosen)
	require.NotNil(t, res.Won)
	assert.Equal(t, res.Winner == "left", *res.Won)

	rec = call(t, s, http.MethodPost, "/choice/today", "dev-1", api.ChoiceReq{Side: "right"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	res = decodeBody[api.ChoiceRes](t, call(t, s, http.MethodGet, "/choice/today", "dev-1", nil))
	assert.Equal(t, "left", res.Chosen)

	rec = call(t, s, http.MethodPost, "/choice/today", "dev-2", api.ChoiceReq{Side: "middle"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChoice_ConcurrentPostsLockInOnce(t *testing.T) {
	s := newServer(t)

	const n = 8
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			side := "left"
			if i%2 == 1 {
				side = "right"
			}
			codes[i] = call(t, s, http.MethodPost, "/choice/today", "dev-1", api.ChoiceReq{Side: side}).Code
		}()
	}
	wg.Wait()

	ok, conflict := 0, 0
	for _, c := range codes {
		switch c {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflict)
}
