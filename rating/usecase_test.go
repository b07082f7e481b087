package rating_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cinelist/movie"
	"cinelist/rating"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Upsert(ctx context.Context, mv movie.Movie, r rating.Rating) (rating.Rating, error) {
	args := m.Called(ctx, mv, r)
	return args.Get(0).(rating.Rating), args.Error(1)
}

func (m *MockRatingRepository) Get(ctx context.Context, userID, imdbID string) (rating.Rating, error) {
	args := m.Called(ctx, userID, imdbID)
	return args.Get(0).(rating.Rating), args.Error(1)
}

func (m *MockRatingRepository) Delete(ctx context.Context, userID, imdbID string) error {
	args := m.Called(ctx, userID, imdbID)
	return args.Error(0)
}

func (m *MockRatingRepository) Score(ctx context.Context, imdbID string) (rating.Score, error) {
	args := m.Called(ctx, imdbID)
	return args.Get(0).(rating.Score), args.Error(1)
}

func (m *MockRatingRepository) Top(ctx context.Context, limit int) ([]rating.Score, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]rating.Score), args.Error(1)
}

type MockMovies struct {
	mock.Mock
}

func (m *MockMovies) GetOrAdd(ctx context.Context, imdbID string) (movie.Result, error) {
	args := m.Called(ctx, imdbID)
	return args.Get(0).(movie.Result), args.Error(1)
}

var (
	heat      = movie.Movie{ImdbID: "tt0113277", Title: "Heat"}
	godfather = movie.Movie{ImdbID: "tt0068646", Title: "The Godfather"}
)

func found(m movie.Movie) movie.Result {
	return movie.Result{Movie: m, Outcome: movie.OutcomeCached}
}

func TestRate(t *testing.T) {
	t.Run("stores a valid rating", func(t *testing.T) {
		r := new(MockRatingRepository)
		m := new(MockMovies)
		uc := rating.NewUsecase(r, m)
		want := rating.Rating{UserID: "u1", ImdbID: heat.ImdbID, Value: 8, Review: "Great heist."}
		m.On("GetOrAdd", mock.Anything, heat.ImdbID).Return(found(heat), nil).Once()
		r.On("Upsert", mock.Anything, heat, want).Return(rating.Rating{ID: 1, UserID: "u1", ImdbID: heat.ImdbID, Value: 8}, nil).Once()

		got, err := uc.Rate(context.Background(), "u1", heat.ImdbID, 8, "  Great heist. ")

		require.NoError(t, err)
		assert.EqualValues(t, 1, got.ID)
		r.AssertExpectations(t)
	})

	t.Run("rejects values out of range", func(t *testing.T) {
		uc := rating.NewUsecase(new(MockRatingRepository), new(MockMovies))

		for _, v := range []int{-1, 0, 11, 100} {
			_, err := uc.Rate(context.Background(), "u1", heat.ImdbID, v, "")

			assert.Equal(t, rating.ErrInvalidValue, err, "value %d", v)
		}
	})

	t.Run("accepts the bounds", func(t *testing.T) {
		r := new(MockRatingRepository)
		m := new(MockMovies)
		uc := rating.NewUsecase(r, m)
		m.On("GetOrAdd", mock.Anything, heat.ImdbID).Return(found(heat), nil)
		r.On("Upsert", mock.Anything, heat, mock.Anything).Return(rating.Rating{}, nil)

		for _, v := range []int{rating.MinValue, rating.MaxValue} {
			_, err := uc.Rate(context.Background(), "u1", heat.ImdbID, v, "")

			assert.NoError(t, err)
		}
	})

	t.Run("rejects a long review", func(t *testing.T) {
		uc := rating.NewUsecase(new(MockRatingRepository), new(MockMovies))

		_, err := uc.Rate(context.Background(), "u1", heat.ImdbID, 5, strings.Repeat("a", rating.MaxReviewLength+1))

		assert.Equal(t, rating.ErrReviewTooLong, err)
	})

	t.Run("requires a user", func(t *testing.T) {
		uc := rating.NewUsecase(new(MockRatingRepository), new(MockMovies))

		_, err := uc.Rate(context.Background(), "", heat.ImdbID, 5, "")

		assert.Equal(t, rating.ErrUserIDRequired, err)
	})

	t.Run("unknown movie cannot be rated", func(t *testing.T) {
		r := new(MockRatingRepository)
		m := new(MockMovies)
		uc := rating.NewUsecase(r, m)
		m.On("GetOrAdd", mock.Anything, "tt9999999").Return(movie.Result{Outcome: movie.OutcomeNotFound}, nil).Once()

		_, err := uc.Rate(context.Background(), "u1", "tt9999999", 5, "")

		assert.Equal(t, movie.ErrNotFound, err)
		r.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserRating(t *testing.T) {
	r := new(MockRatingRepository)
	uc := rating.NewUsecase(r, new(MockMovies))

	t.Run("returns the stored rating", func(t *testing.T) {
		r.On("Get", mock.Anything, "u1", heat.ImdbID).Return(rating.Rating{Value: 7}, nil).Once()

		got, err := uc.UserRating(context.Background(), "u1", " "+heat.ImdbID)

		require.NoError(t, err)
		assert.Equal(t, 7, got.Value)
	})

	t.Run("blank movie id", func(t *testing.T) {
		_, err := uc.UserRating(context.Background(), "u1", "")

		assert.Equal(t, movie.ErrInvalidID, err)
	})
}

func TestDeleteRating(t *testing.T) {
	r := new(MockRatingRepository)
	uc := rating.NewUsecase(r, new(MockMovies))
	r.On("Delete", mock.Anything, "u1", heat.ImdbID).Return(rating.ErrRatingNotFound).Once()

	err := uc.DeleteRating(context.Background(), "u1", heat.ImdbID)

	assert.Equal(t, rating.ErrRatingNotFound, err)
}

func TestMovieSummary(t *testing.T) {
	t.Run("combines movie and score", func(t *testing.T) {
		r := new(MockRatingRepository)
		m := new(MockMovies)
		uc := rating.NewUsecase(r, m)
		m.On("GetOrAdd", mock.Anything, heat.ImdbID).Return(found(heat), nil).Once()
		r.On("Score", mock.Anything, heat.ImdbID).Return(rating.Score{ImdbID: heat.ImdbID, Average: 8.5, Count: 2}, nil).Once()

		got, err := uc.MovieSummary(context.Background(), heat.ImdbID)

		require.NoError(t, err)
		assert.Equal(t, rating.Summary{Movie: heat, Average: 8.5, Count: 2}, got)
	})

	t.Run("unknown movie", func(t *testing.T) {
		m := new(MockMovies)
		uc := rating.NewUsecase(new(MockRatingRepository), m)
		m.On("GetOrAdd", mock.Anything, "tt9999999").Return(movie.Result{Outcome: movie.OutcomeNotFound}, nil).Once()

		_, err := uc.MovieSummary(context.Background(), "tt9999999")

		assert.Equal(t, movie.ErrNotFound, err)
	})
}

func TestTopRated(t *testing.T) {
	t.Run("keeps repository order and skips unresolvable movies", func(t *testing.T) {
		r := new(MockRatingRepository)
		m := new(MockMovies)
		uc := rating.NewUsecase(r, m)
		r.On("Top", mock.Anything, rating.DefaultTopLimit).Return([]rating.Score{
			{ImdbID: godfather.ImdbID, Average: 9.5, Count: 4},
			{ImdbID: "tt0000001", Average: 9, Count: 1},
			{ImdbID: heat.ImdbID, Average: 8, Count: 3},
		}, nil).Once()
		m.On("GetOrAdd", mock.Anything, godfather.ImdbID).Return(found(godfather), nil).Once()
		m.On("GetOrAdd", mock.Anything, "tt0000001").Return(movie.Result{Outcome: movie.OutcomeUpstreamFailed}, nil).Once()
		m.On("GetOrAdd", mock.Anything, heat.ImdbID).Return(found(heat), nil).Once()

		got, err := uc.TopRated(context.Background(), 0)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, godfather, got[0].Movie)
		assert.Equal(t, heat, got[1].Movie)
	})

	t.Run("caps the limit", func(t *testing.T) {
		r := new(MockRatingRepository)
		uc := rating.NewUsecase(r, new(MockMovies))
		r.On("Top", mock.Anything, rating.MaxTopLimit).Return([]rating.Score{}, nil).Once()

		got, err := uc.TopRated(context.Background(), 500)

		require.NoError(t, err)
		assert.Empty(t, got)
		r.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		r := new(MockRatingRepository)
		uc := rating.NewUsecase(r, new(MockMovies))
		r.On("Top", mock.Anything, 5).Return([]rating.Score(nil), errors.New("db down")).Once()

		_, err := uc.TopRated(context.Background(), 5)

		assert.EqualError(t, err, "db down")
	})
}
