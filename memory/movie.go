package memory

import (
	"context"
	"math/rand/v2"
	"sync"

	"cinelist/movie"
)

// MovieRepository is an in-process movie store.
type MovieRepository struct {
	sync.RWMutex
	data map[string]movie.Movie
	ids  []string
}

func NewMovieRepository() *MovieRepository {
	return &MovieRepository{data: map[string]movie.Movie{}}
}

// Lookup implements [movie.Repository].
func (r *MovieRepository) Lookup(_ context.Context, imdbID string) (movie.Movie, bool, error) {
	r.RLock()
	defer r.RUnlock()
	m, ok := r.data[imdbID]
	return m, ok, nil
}

// Insert implements [movie.Repository].
func (r *MovieRepository) Insert(_ context.Context, m movie.Movie) error {
	m = m.Bounded()
	r.Lock()
	defer r.Unlock()
	if _, ok := r.data[m.ImdbID]; ok {
		return movie.ErrAlreadyCached
	}
	r.data[m.ImdbID] = m
	r.ids = append(r.ids, m.ImdbID)
	return nil
}

// Random implements [movie.Repository].
func (r *MovieRepository) Random(_ context.Context) (movie.Movie, bool, error) {
	r.RLock()
	defer r.RUnlock()
	if len(r.ids) == 0 {
		return movie.Movie{}, false, nil
	}
	return r.data[r.ids[rand.IntN(len(r.ids))]], true, nil
}

// Len returns the number of stored movies.
func (r *MovieRepository) Len() int {
	r.RLock()
	defer r.RUnlock()
	return len(r.data)
}
