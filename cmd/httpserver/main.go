package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinelist/httpserver"
	"cinelist/list"
	"cinelist/movie"
	"cinelist/omdb"
	"cinelist/pkg/config"
	"cinelist/pkg/sentry"
	"cinelist/postgres"
	"cinelist/rating"
	"cinelist/store"

	sentrygo "github.com/getsentry/sentry-go"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Cannot load config", "error", err)
		os.Exit(1)
	}

	err = sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		AttachStacktrace: true,
	})
	if err != nil {
		slog.Error("Cannot init sentry", "error", err)
		os.Exit(1)
	}
	defer sentrygo.Flush(sentry.FlushTime)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *gorm.DB
	if store.NeedsPostgres(cfg) {
		db, err = store.OpenPostgres(cfg)
		if err != nil {
			fatal("Cannot open postgres connection", err)
		}
	}

	repo, err := store.NewMovieRepository(ctx, cfg, db)
	if err != nil {
		fatal("Cannot create movie repository", err, "driver", cfg.StoreDriver)
	}

	provider, err := omdb.New(omdb.Options{
		APIKey:     cfg.OMDb.APIKey,
		BaseURL:    cfg.OMDb.BaseURL,
		Timeout:    cfg.OMDb.Timeout,
		RatePerSec: cfg.OMDb.RatePerSec,
	})
	if err != nil {
		fatal("Cannot create omdb client", err)
	}

	movies := movie.NewUsecase(repo, provider,
		movie.WithLogger(logger),
		movie.WithReporter(sentry.NewReporter()),
		movie.WithSearchTTL(cfg.Cache.SearchTTL),
	)

	server := httpserver.Default(cfg)
	server.MovieService = movies
	if db != nil {
		server.ListService = list.NewUsecase(postgres.NewListRepository(db), movies)
		server.RatingService = rating.NewUsecase(postgres.NewRatingRepository(db), movies)
	} else {
		slog.Warn("no postgres configured, list and rating routes are disabled")
	}

	go func() {
		slog.Info("server started!", "addr", server.Addr, "store", cfg.StoreDriver)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped with error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

// fatal logs err, reports it at fatal level and exits. Deferred calls do not
// run, so it is only used before the server starts.
func fatal(msg string, err error, args ...any) {
	slog.Error(msg, append(args, "error", err)...)
	sentry.Fatal(err)
	os.Exit(1)
}
