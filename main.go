package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/ljp-solutions/word-ladder/assets"
	"github.com/ljp-solutions/word-ladder/internal/config"
	"github.com/ljp-solutions/word-ladder/internal/daily"
	"github.com/ljp-solutions/word-ladder/internal/db"
	"github.com/ljp-solutions/word-ladder/internal/httpserver"
	"github.com/ljp-solutions/word-ladder/internal/pgstore"
	"github.com/ljp-solutions/word-ladder/internal/store"
	"github.com/ljp-solutions/word-ladder/internal/ticket"
	"github.com/ljp-solutions/word-ladder/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	list, err := words.Load(cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}
	log.Info().Int("words", list.Len()).Msg("dictionary loaded")

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer conn.Close()
	if err := db.Migrate(conn, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	rotation, err := daily.EmbeddedRotation(cfg.DailySalt, list.Has)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load puzzle rotation")
	}
	if rotation.Len() == 0 {
		log.Warn().Msg("no playable puzzles in rotation")
	}

	opt := httpserver.Options{
		KV:           store.NewSQLite(conn),
		Tickets:      ticket.NewIssuer(cfg.TicketSecret),
		Salt:         cfg.DailySalt,
		MaxTurns:     cfg.MaxTurns,
		StrictLookup: cfg.StrictWordLookup,
		ClientOrigin: cfg.ClientOrigin,
		Production:   cfg.Production,
		RateLimit:    rate.Limit(cfg.RateLimitRPS),
		Burst:        cfg.RateLimitBurst,
	}

	if cfg.DatabaseURL != "" {
		pg := openPostgres(cfg.DatabaseURL, list)
		defer pg.Close()
		opt.Dict = pg
		opt.Puzzles = daily.Chain{pg, rotation}
		opt.Results = pg
	} else {
		results := daily.NewStore(conn)
		opt.Dict = list
		opt.Puzzles = daily.Chain{results, rotation}
		opt.Results = results
	}

	srv := httpserver.New(opt)
	log.Info().Str("addr", cfg.Addr()).Bool("postgres", cfg.DatabaseURL != "").Msg("starting swapple server")
	if err := srv.Start(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// openPostgres migrates, connects and seeds the words table from list.
func openPostgres(url string, list *words.List) *pgstore.Store {
	if err := pgstore.Migrate(url); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate postgres")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pg, err := pgstore.Open(ctx, url)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	n, err := pg.SeedWords(ctx, list.Words())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed words")
	}
	log.Info().Int("added", n).Msg("postgres dictionary seeded")
	return pg
}

var _ httpserver.ResultStore = (*pgstore.Store)(nil)
