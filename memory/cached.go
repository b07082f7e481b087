package memory

import (
	"context"

	"cinelist/movie"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedRepository keeps recently used movies in an LRU in front of another
// repository. Stored movies never change, so entries are never invalidated.
type CachedRepository struct {
	base movie.Repository
	hot  *lru.Cache[string, movie.Movie]
}

func NewCachedRepository(base movie.Repository, size int) (*CachedRepository, error) {
	hot, err := lru.New[string, movie.Movie](size)
	if err != nil {
		return nil, err
	}
	return &CachedRepository{base: base, hot: hot}, nil
}

// Lookup implements [movie.Repository].
func (r *CachedRepository) Lookup(ctx context.Context, imdbID string) (movie.Movie, bool, error) {
	if m, ok := r.hot.Get(imdbID); ok {
		return m, true, nil
	}

	m, ok, err := r.base.Lookup(ctx, imdbID)
	if err != nil || !ok {
		return m, ok, err
	}
	r.hot.Add(imdbID, m)
	return m, true, nil
}

// Insert implements [movie.Repository]. On conflict the stored copy may come
// from another writer, so only our own successful writes are kept hot.
func (r *CachedRepository) Insert(ctx context.Context, m movie.Movie) error {
	m = m.Bounded()
	if err := r.base.Insert(ctx, m); err != nil {
		return err
	}
	r.hot.Add(m.ImdbID, m)
	return nil
}

// Random implements [movie.Repository].
func (r *CachedRepository) Random(ctx context.Context) (movie.Movie, bool, error) {
	return r.base.Random(ctx)
}
