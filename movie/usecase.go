package movie

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const defaultSearchTTL = 5 * time.Minute

type Service interface {
	GetOrAdd(ctx context.Context, imdbID string) (Result, error)
	Search(ctx context.Context, query string) ([]Movie, error)
	Random(ctx context.Context) (Movie, error)
}

// Repository is the local record store. Insert must return ErrAlreadyCached
// when a record with the same ImdbID exists.
type Repository interface {
	Lookup(ctx context.Context, imdbID string) (Movie, bool, error)
	Insert(ctx context.Context, m Movie) error
	Random(ctx context.Context) (Movie, bool, error)
}

// Provider is the upstream metadata source. Fetch returns ErrNotFound when the
// provider answers with a negative result; Search returns the ids of the hits.
type Provider interface {
	Fetch(ctx context.Context, imdbID string) (Movie, error)
	Search(ctx context.Context, query string) ([]string, error)
}

// Reporter forwards failures that are absorbed by the usecase. Report is for
// store failures, Warn for upstream ones the caller sees as a degraded answer.
type Reporter interface {
	Report(ctx context.Context, err error, tags map[string]string)
	Warn(ctx context.Context, msg string, err error, tags map[string]string)
}

type Option func(uc *Usecase)

func WithLogger(l *slog.Logger) Option {
	return func(uc *Usecase) {
		uc.logger = l
	}
}

func WithReporter(r Reporter) Option {
	return func(uc *Usecase) {
		uc.reporter = r
	}
}

// WithSearchTTL sets how long search hits are remembered in process. A ttl of
// zero or less turns the search cache off.
func WithSearchTTL(ttl time.Duration) Option {
	return func(uc *Usecase) {
		uc.searchTTL = ttl
	}
}

type Usecase struct {
	r        Repository
	p        Provider
	logger   *slog.Logger
	reporter Reporter

	searchTTL time.Duration
	searches  *cache.Cache
	inflight  singleflight.Group
}

func NewUsecase(r Repository, p Provider, opts ...Option) *Usecase {
	uc := &Usecase{
		r:         r,
		p:         p,
		logger:    slog.Default(),
		reporter:  nopReporter{},
		searchTTL: defaultSearchTTL,
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.searchTTL > 0 {
		uc.searches = cache.New(uc.searchTTL, 2*uc.searchTTL)
	}
	return uc
}

// GetOrAdd resolves imdbID from the store, falling back to the provider on a
// miss and writing the fetched record back. Only a blank id is an error;
// upstream and store failures collapse into a not-found Result.
func (uc *Usecase) GetOrAdd(ctx context.Context, imdbID string) (Result, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return Result{}, ErrInvalidID
	}

	m, ok, err := uc.r.Lookup(ctx, imdbID)
	switch {
	case err != nil:
		uc.logger.ErrorContext(ctx, "movie cache lookup failed", "imdb_id", imdbID, "error", err)
		uc.reporter.Report(ctx, err, map[string]string{"imdb_id": imdbID, "stage": "lookup"})
	case ok:
		return Result{Movie: m, Outcome: OutcomeCached}, nil
	}

	// Misses for the same id share one upstream call and one insert. The shared
	// call must not die with whichever caller happened to start it.
	v, _, _ := uc.inflight.Do(imdbID, func() (interface{}, error) {
		return uc.fetchAndStore(context.WithoutCancel(ctx), imdbID), nil
	})
	return v.(Result), nil
}

func (uc *Usecase) fetchAndStore(ctx context.Context, imdbID string) Result {
	m, err := uc.p.Fetch(ctx, imdbID)
	if errors.Is(err, ErrNotFound) {
		uc.logger.InfoContext(ctx, "movie not found upstream", "imdb_id", imdbID)
		return Result{Movie: Movie{ImdbID: imdbID}, Outcome: OutcomeNotFound}
	}
	if err != nil {
		uc.logger.WarnContext(ctx, "movie upstream fetch failed", "imdb_id", imdbID, "error", err)
		uc.reporter.Warn(ctx, "movie upstream fetch failed", err, map[string]string{"imdb_id": imdbID, "stage": "fetch"})
		return Result{Movie: Movie{ImdbID: imdbID}, Outcome: OutcomeUpstreamFailed}
	}

	// Records are keyed by the id callers ask for.
	m.ImdbID = imdbID
	m = m.Bounded()

	if err := uc.r.Insert(ctx, m); err != nil && !errors.Is(err, ErrAlreadyCached) {
		uc.logger.ErrorContext(ctx, "movie cache insert failed", "imdb_id", imdbID, "error", err)
		uc.reporter.Report(ctx, err, map[string]string{"imdb_id": imdbID, "stage": "insert"})
	}

	return Result{Movie: m, Outcome: OutcomeFetched}
}

// Search asks the provider for matching ids and resolves every hit through
// GetOrAdd, so search results end up in the store as well. Hits that cannot
// be resolved are left out.
func (uc *Usecase) Search(ctx context.Context, query string) ([]Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidQuery
	}

	ids, err := uc.searchIDs(ctx, query)
	if err != nil {
		uc.logger.WarnContext(ctx, "movie upstream search failed", "query", query, "error", err)
		uc.reporter.Warn(ctx, "movie upstream search failed", err, map[string]string{"query": query, "stage": "search"})
		return []Movie{}, nil
	}

	movies := make([]Movie, 0, len(ids))
	for _, id := range ids {
		res, err := uc.GetOrAdd(ctx, id)
		if err != nil || !res.Found() {
			continue
		}
		movies = append(movies, res.Movie)
	}
	return movies, nil
}

func (uc *Usecase) searchIDs(ctx context.Context, query string) ([]string, error) {
	if uc.searches == nil {
		return uc.searchUpstream(ctx, query)
	}

	key := strings.ToLower(query)
	if v, ok := uc.searches.Get(key); ok {
		return v.([]string), nil
	}

	ids, err := uc.searchUpstream(ctx, query)
	if err != nil {
		return nil, err
	}

	uc.searches.SetDefault(key, ids)
	return ids, nil
}

// searchUpstream folds a negative provider answer into an empty hit list.
func (uc *Usecase) searchUpstream(ctx context.Context, query string) ([]string, error) {
	ids, err := uc.p.Search(ctx, query)
	if errors.Is(err, ErrNotFound) {
		ids, err = []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (uc *Usecase) Random(ctx context.Context) (Movie, error) {
	m, ok, err := uc.r.Random(ctx)
	if err != nil {
		return Movie{}, err
	}
	if !ok {
		return Movie{}, ErrEmptyCatalog
	}
	return m, nil
}

type nopReporter struct{}

func (nopReporter) Report(context.Context, error, map[string]string)        {}
func (nopReporter) Warn(context.Context, string, error, map[string]string) {}
