// internal/client/client.go
//
// Typed HTTP client for the word-ladder server.
// Implements:
//   - words.Dictionary   (POST /words/check)
//   - daily.PuzzleSource (GET /puzzle/today)
//   - play.Submitter     (POST /results)
//
// The play ticket returned with the puzzle is kept per date and sent back
// with the outcome.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ljp-solutions/word-ladder/internal/api"
	"github.com/ljp-solutions/word-ladder/internal/daily"
	"github.com/ljp-solutions/word-ladder/internal/game"
	"github.com/ljp-solutions/word-ladder/internal/play"
	"github.com/ljp-solutions/word-ladder/internal/words"
)

// DefaultTimeout bounds every request unless WithHTTPClient is used.
const DefaultTimeout = 5 * time.Second

// ErrNoTicket is returned by SubmitOutcome when the puzzle was not fetched
// through this client.
var ErrNoTicket = errors.New("no play ticket for date")

// APIError is a non-2xx response.
type APIError struct {
	Status int
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Code)
}

type Client struct {
	base     string
	deviceID string
	http     *http.Client

	mu      sync.Mutex
	tickets map[string]string // date → ticket
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// New builds a client for baseURL identifying as deviceID.
func New(baseURL, deviceID string, opts ...Option) *Client {
	c := &Client{
		base:     strings.TrimRight(baseURL, "/"),
		deviceID: deviceID,
		http:     &http.Client{Timeout: DefaultTimeout},
		tickets:  map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Contains asks the server's dictionary about word.
func (c *Client) Contains(ctx context.Context, word string) (bool, error) {
	var res api.WordCheckRes
	if err := c.do(ctx, http.MethodPost, "/words/check", api.WordCheckReq{Word: word}, &res); err != nil {
		return false, err
	}
	return res.Valid, nil
}

// TodayPuzzle fetches today's puzzle and remembers its ticket.
func (c *Client) TodayPuzzle(ctx context.Context) (game.Puzzle, error) {
	var res api.PuzzleRes
	if err := c.do(ctx, http.MethodGet, "/puzzle/today", nil, &res); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == api.ErrNoGame {
			return game.Puzzle{}, daily.ErrNoPuzzle
		}
		return game.Puzzle{}, err
	}
	c.mu.Lock()
	c.tickets[res.Date] = res.Ticket
	c.mu.Unlock()
	return res.Puzzle, nil
}

// Puzzle serves only the server's current day; any other date is ErrNoPuzzle.
func (c *Client) Puzzle(ctx context.Context, date string) (game.Puzzle, error) {
	p, err := c.TodayPuzzle(ctx)
	if err != nil {
		return game.Puzzle{}, err
	}
	if p.Date != date {
		return game.Puzzle{}, daily.ErrNoPuzzle
	}
	return p, nil
}

// SubmitOutcome records the result for p.Date. A duplicate is not an error.
func (c *Client) SubmitOutcome(ctx context.Context, p game.Puzzle, o play.Outcome) error {
	c.mu.Lock()
	tk, ok := c.tickets[p.Date]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w %s", ErrNoTicket, p.Date)
	}
	var res api.ResultRes
	return c.do(ctx, http.MethodPost, "/results",
		api.ResultReq{Won: o.Won, Streak: o.Streak, Turns: o.Turns, Ticket: tk}, &res)
}

// GlobalStats fetches the community totals for date ("" = today).
func (c *Client) GlobalStats(ctx context.Context, date string) (daily.GlobalStats, error) {
	path := "/stats/global"
	if date != "" {
		path += "?date=" + date
	}
	var g daily.GlobalStats
	err := c.do(ctx, http.MethodGet, path, nil, &g)
	return g, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.deviceID != "" {
		req.Header.Set(api.DeviceHeader, c.deviceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e api.ErrorRes
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&e)
		return &APIError{Status: resp.StatusCode, Code: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

var (
	_ words.Dictionary   = (*Client)(nil)
	_ daily.PuzzleSource = (*Client)(nil)
	_ play.Submitter     = (*Client)(nil)
)
