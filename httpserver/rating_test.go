package httpserver_test

import (
	"context"
	"net/http"
	"testing"

	"cinelist/httpserver"
	"cinelist/movie"
	"cinelist/rating"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRatingService struct {
	mock.Mock
}

func (m *MockRatingService) Rate(ctx context.Context, userID, imdbID string, value int, review string) (rating.Rating, error) {
	args := m.Called(ctx, userID, imdbID, value, review)
	return args.Get(0).(rating.Rating), args.Error(1)
}

func (m *MockRatingService) UserRating(ctx context.Context, userID, imdbID string) (rating.Rating, error) {
	args := m.Called(ctx, userID, imdbID)
	return args.Get(0).(rating.Rating), args.Error(1)
}

func (m *MockRatingService) DeleteRating(ctx context.Context, userID, imdbID string) error {
	args := m.Called(ctx, userID, imdbID)
	return args.Error(0)
}

func (m *MockRatingService) MovieSummary(ctx context.Context, imdbID string) (rating.Summary, error) {
	args := m.Called(ctx, imdbID)
	return args.Get(0).(rating.Summary), args.Error(1)
}

func (m *MockRatingService) TopRated(ctx context.Context, limit int) ([]rating.Summary, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]rating.Summary), args.Error(1)
}

func TestRateMovie(t *testing.T) {
	server := httpserver.Default(testConfig())
	svc := new(MockRatingService)
	server.RatingService = svc
	token := mustSignTestToken(t, "alice")

	t.Run("stores the rating", func(t *testing.T) {
		want := rating.Rating{ID: 3, UserID: "alice", ImdbID: heat.ImdbID, Value: 9, Review: "Great heist."}
		svc.On("Rate", mock.Anything, "alice", heat.ImdbID, 9, "Great heist.").Return(want, nil).Once()

		rec := serve(t, server.Router, newRequest(t, http.MethodPut, "/api/movies/tt0113277/rating", httpserver.RateMovieRequest{Value: 9, Review: "Great heist."}, token))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got rating.Rating
		decodeAPIResult(t, decodeAPIResponse(t, rec).Result, &got)
		assert.Equal(t, want.Value, got.Value)
		assert.Equal(t, want.Review, got.Review)
	})

	t.Run("out of range value", func(t *testing.T) {
		for _, body := range []string{`{"value":0}`, `{"value":11}`, `{}`} {
			rec := serve(t, server.Router, newRequest(t, http.MethodPut, "/api/movies/tt0113277/rating", body, token))

			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		}
	})

	t.Run("legacy user_id claim", func(t *testing.T) {
		claims := jwt.MapClaims{"user_id": 42}
		legacy, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
		require.NoError(t, err)
		svc.On("Rate", mock.Anything, "42", heat.ImdbID, 5, "").Return(rating.Rating{Value: 5}, nil).Once()

		rec := serve(t, server.Router, newRequest(t, http.MethodPut, "/api/movies/tt0113277/rating", `{"value":5}`, legacy))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown movie", func(t *testing.T) {
		svc.On("Rate", mock.Anything, "alice", "tt9999999", 5, "").Return(rating.Rating{}, movie.ErrNotFound).Once()

		rec := serve(t, server.Router, newRequest(t, http.MethodPut, "/api/movies/tt9999999/rating", `{"value":5}`, token))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	svc.AssertExpectations(t)
}

func TestMyRating(t *testing.T) {
	server := httpserver.Default(testConfig())
	svc := new(MockRatingService)
	server.RatingService = svc
	token := mustSignTestToken(t, "alice")

	t.Run("get", func(t *testing.T) {
		svc.On("UserRating", mock.Anything, "alice", heat.ImdbID).Return(rating.Rating{}, rating.ErrRatingNotFound).Once()

		rec := serve(t, server.Router, newRequest(t, http.MethodGet, "/api/movies/tt0113277/rating", nil, token))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "rating not found", decodeAPIResponse(t, rec).Message)
	})

	t.Run("delete", func(t *testing.T) {
		svc.On("DeleteRating", mock.Anything, "alice", heat.ImdbID).Return(nil).Once()

		rec := serve(t, server.Router, newRequest(t, http.MethodDelete, "/api/movies/tt0113277/rating", nil, token))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	svc.AssertExpectations(t)
}

func TestRatingSummaries(t *testing.T) {
	server := httpserver.Default(testConfig())
	svc := new(MockRatingService)
	server.RatingService = svc

	t.Run("movie summary is public", func(t *testing.T) {
		want := rating.Summary{Movie: heat, Average: 8.5, Count: 2}
		svc.On("MovieSummary", mock.Anything, heat.ImdbID).Return(want, nil).Once()

		rec := serve(t, server.Router, newRequest(t, http.MethodGet, "/api/movies/tt0113277/ratings", nil, ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got rating.Summary
		decodeAPIResult(t, decodeAPIResponse(t, rec).Result, &got)
		assert.Equal(t, want, got)
	})

	t.Run("top rated passes the limit", func(t *testing.T) {
		svc.On("TopRated", mock.Anything, 5).Return([]rating.Summary{{Movie: heat, Average: 8.5, Count: 2}}, nil).Once()

		rec := serve(t, server.Router, newRequest(t, http.MethodGet, "/api/ratings/top?limit=5", nil, ""))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("top rated without a limit", func(t *testing.T) {
		svc.On("TopRated", mock.Anything, 0).Return([]rating.Summary{}, nil).Once()

		rec := serve(t, server.Router, newRequest(t, http.MethodGet, "/api/ratings/top", nil, ""))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := serve(t, server.Router, newRequest(t, http.MethodGet, "/api/ratings/top?limit=ten", nil, ""))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	svc.AssertExpectations(t)
}
