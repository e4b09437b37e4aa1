// internal/httpserver/server.go
//
// HTTP server wiring for the word-ladder backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, request log).
//   - Public endpoints: "/", "/health".
//   - Puzzle, dictionary and outcome endpoints (routes_game.go).
//   - Server-side daily sessions under /daily (routes_daily.go).
//   - Right Today under /choice (routes_choice.go).
//   - Device identification: X-Device-ID header, else an anonymous cookie.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the anon cookie works).
//   - There are no user accounts; a device id is the only identity.

package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/ljp-solutions/word-ladder/internal/api"
	"github.com/ljp-solutions/word-ladder/internal/daily"
	"github.com/ljp-solutions/word-ladder/internal/move"
	"github.com/ljp-solutions/word-ladder/internal/store"
	"github.com/ljp-solutions/word-ladder/internal/ticket"
	"github.com/ljp-solutions/word-ladder/internal/words"
)

// ResultStore persists one outcome per device per day. *daily.Store and
// *pgstore.Store satisfy it.
type ResultStore interface {
	AlreadyPlayed(ctx context.Context, deviceID, date string) (bool, error)
	InsertResult(ctx context.Context, r daily.Result) (bool, error)
	GlobalStats(ctx context.Context, date string) (daily.GlobalStats, error)
	Leaderboard(ctx context.Context, date string, limit int) ([]daily.LBRow, error)
}

// Options are the server's collaborators and settings.
type Options struct {
	Dict    words.Dictionary
	Puzzles daily.PuzzleSource
	Results ResultStore
	KV      store.KV // per-device stats, play marker and choice
	Tickets *ticket.Issuer

	Salt         string
	MaxTurns     int
	StrictLookup bool
	ClientOrigin string
	Production   bool

	RateLimit rate.Limit // requests per second per IP on dictionary routes
	Burst     int

	Now func() time.Time
}

// Server bundles router and collaborators.
type Server struct {
	r         *chi.Mux
	opt       Options
	oracle    *words.Oracle
	validator *move.Validator
	limiter   *ipLimiter
	daily     *dailyServer

	choiceMu sync.Mutex // serializes choice lock-in
}

// New constructs a Server, installs middleware, and registers routes.
func New(opt Options) *Server {
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if opt.ClientOrigin == "" {
		opt.ClientOrigin = "http://localhost:5173"
	}
	var vopts []move.Option
	if opt.StrictLookup {
		vopts = append(vopts, move.WithStrictLookup())
	}
	oracle := words.NewOracle(opt.Dict)
	s := &Server{
		r:         chi.NewRouter(),
		opt:       opt,
		oracle:    oracle,
		validator: move.NewValidator(oracle, vopts...),
		limiter:   newIPLimiter(opt.RateLimit, opt.Burst),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // zerolog access log
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(opt.ClientOrigin))          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "swapple",
			"endpoints": []string{
				"/health", "GET /puzzle/today", "POST /words/check", "POST /validate-word",
				"POST /results", "GET /stats/global", "GET /leaderboard", "/daily/*", "/choice/today",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	s.mountGame(s.r)
	s.mountDaily(s.r)
	s.mountChoice(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": api.ErrNotFound, "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

func (s *Server) today() string { return daily.DateKey(s.opt.Now()) }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+api.DeviceHeader)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger writes one zerolog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("request")
	})
}

// ------------------------------ rate limit ---------------------------------

// ipLimiter hands out one token bucket per client IP.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newIPLimiter(limit rate.Limit, burst int) *ipLimiter {
	if limit <= 0 {
		limit = 5
	}
	if burst < 1 {
		burst = 10
	}
	return &ipLimiter{limiters: map[string]*rate.Limiter{}, limit: limit, burst: burst}
}

func (l *ipLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limiters[key]; ok {
		return lim
	}
	if key == "" {
		log.Warn().Msg("rate limiter key is empty")
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.limiters[key] = lim
	return lim
}

// middleware rejects requests over the per-IP budget with 429.
func (l *ipLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.get(clientIP(r)).Allow() {
			writeErr(w, http.StatusTooManyRequests, api.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port RealIP may leave on RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// ------------------------------- device id ---------------------------------

const anonCookieName = "swapple_anon"

// deviceID returns the X-Device-ID header, an existing anon cookie, or sets
// a new anon cookie.
func (s *Server) deviceID(w http.ResponseWriter, r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(api.DeviceHeader)); id != "" {
		return id
	}
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	sameSite := http.SameSiteLaxMode
	if s.opt.Production {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opt.Production,
		SameSite: sameSite,
		Expires:  time.Now().Add(180 * 24 * time.Hour),
	})
	return id
}

// deviceKV scopes the shared KV to one device.
func (s *Server) deviceKV(id string) store.KV {
	return store.WithPrefix(s.opt.KV, "device:"+id+":")
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeErr(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, api.ErrorRes{Error: code})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(v)
}
