package main

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cinelist/movie"
	"cinelist/omdb"
	"cinelist/pkg/config"
	"cinelist/store"

	"gorm.io/gorm"
)

const defaultMovieLensURL = "https://files.grouplens.org/datasets/movielens/ml-latest-small.zip"

// movieLookup is the part of movie.Service the seeder drives.
type movieLookup interface {
	GetOrAdd(ctx context.Context, imdbID string) (movie.Result, error)
}

func main() {
	var (
		csvPath string
		zipURL  string
		limit   int
	)

	flag.StringVar(&csvPath, "csv", "", "Path to links.csv (skip download)")
	flag.StringVar(&zipURL, "url", defaultMovieLensURL, "MovieLens zip URL")
	flag.IntVar(&limit, "limit", 100, "Limit number of ids to warm (0 = all)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var db *gorm.DB
	if store.NeedsPostgres(cfg) {
		db, err = store.OpenPostgres(cfg)
		if err != nil {
			slog.Error("cannot open postgres connection", "error", err)
			os.Exit(1)
		}
	}
	if cfg.StoreDriver == config.StoreMemory {
		slog.Warn("memory store selected, warmed movies are dropped when the seeder exits")
	}

	repo, err := store.NewMovieRepository(ctx, cfg, db)
	if err != nil {
		slog.Error("cannot create movie repository", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	provider, err := omdb.New(omdb.Options{
		APIKey:     cfg.OMDb.APIKey,
		BaseURL:    cfg.OMDb.BaseURL,
		Timeout:    cfg.OMDb.Timeout,
		RatePerSec: cfg.OMDb.RatePerSec,
	})
	if err != nil {
		slog.Error("cannot create omdb client", "error", err)
		os.Exit(1)
	}
	movies := movie.NewUsecase(repo, provider, movie.WithLogger(logger))

	cleanup := func() {}
	if csvPath == "" {
		path, c, err := downloadAndExtract(zipURL)
		if err != nil {
			slog.Error("failed to download dataset", "error", err)
			os.Exit(1)
		}
		csvPath = path
		cleanup = c
	}
	defer cleanup()

	file, err := os.Open(csvPath)
	if err != nil {
		slog.Error("cannot open csv", "error", err)
		os.Exit(1)
	}
	defer file.Close()

	counts, err := warmCache(ctx, movies, file, limit)
	if err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}

	slog.Info("seed completed",
		"cached", counts[movie.OutcomeCached],
		"fetched", counts[movie.OutcomeFetched],
		"not_found", counts[movie.OutcomeNotFound],
		"upstream_failed", counts[movie.OutcomeUpstreamFailed],
	)
}

func downloadAndExtract(zipURL string) (string, func(), error) {
	if zipURL == "" {
		return "", func() {}, errors.New("dataset url is empty")
	}

	tmpDir, err := os.MkdirTemp("", "movielens-")
	if err != nil {
		return "", func() {}, err
	}

	cleanup := func() {
		_ = os.RemoveAll(tmpDir)
	}

	zipPath := filepath.Join(tmpDir, "dataset.zip")
	if err := downloadFile(zipURL, zipPath); err != nil {
		cleanup()
		return "", func() {}, err
	}

	csvPath, err := extractLinksCSV(zipPath, tmpDir)
	if err != nil {
		cleanup()
		return "", func() {}, err
	}

	return csvPath, cleanup, nil
}

func downloadFile(url, dest string) error {
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Get(url) // nolint: noctx
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

func extractLinksCSV(zipPath, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	for _, file := range r.File {
		if !strings.HasSuffix(file.Name, "links.csv") {
			continue
		}

		src, err := file.Open()
		if err != nil {
			return "", err
		}
		defer src.Close()

		destPath := filepath.Join(destDir, filepath.Base(file.Name))
		out, err := os.Create(destPath)
		if err != nil {
			return "", err
		}

		if _, err := io.Copy(out, src); err != nil {
			_ = out.Close()
			return "", err
		}
		if err := out.Close(); err != nil {
			return "", err
		}

		return destPath, nil
	}

	return "", errors.New("links.csv not found in zip")
}

// warmCache resolves every imdb id in the links file through GetOrAdd and
// counts the outcomes. It stops early when ctx is canceled.
func warmCache(ctx context.Context, movies movieLookup, r io.Reader, limit int) (map[movie.Outcome]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	idxImdbID, err := parseLinksCSVHeader(reader)
	if err != nil {
		return nil, err
	}

	counts := make(map[movie.Outcome]int)
	seen := 0
	for limit <= 0 || seen < limit {
		if err := ctx.Err(); err != nil {
			return counts, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return counts, err
		}
		imdbID, ok := parseLinkRecord(record, idxImdbID)
		if !ok {
			continue
		}

		res, err := movies.GetOrAdd(ctx, imdbID)
		if err != nil {
			return counts, fmt.Errorf("warm %s: %w", imdbID, err)
		}
		counts[res.Outcome]++
		seen++
	}

	return counts, nil
}

func parseLinksCSVHeader(reader *csv.Reader) (int, error) {
	header, err := reader.Read()
	if err != nil {
		return 0, err
	}

	for i, name := range header {
		if strings.TrimSpace(name) == "imdbId" {
			return i, nil
		}
	}
	return 0, errors.New("missing imdbId column in csv header")
}

// parseLinkRecord turns the numeric MovieLens column into a tt-prefixed id.
func parseLinkRecord(record []string, idxImdbID int) (string, bool) {
	if idxImdbID >= len(record) {
		return "", false
	}

	n, err := strconv.Atoi(strings.TrimSpace(record[idxImdbID]))
	if err != nil || n <= 0 {
		return "", false
	}
	return fmt.Sprintf("tt%07d", n), true
}
