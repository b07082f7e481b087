package httpserver_test

import (
	"net/http"
	"testing"

	"cinelist/list"
	"cinelist/movie"
	"cinelist/rating"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const heatPayload = `{"Title":"Heat","Year":"1995","Rated":"R","Director":"Michael Mann","imdbRating":"8.3","imdbID":"tt0113277","Type":"movie","Poster":"N/A","Response":"True"}`

func TestKeepingTrackOfMovies(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	db := MustCreateTestDatabase(t)
	MigrateTestDatabase(t, db, "../migrations")
	upstream := MustCreateOMDbServer(t, map[string]string{"tt0113277": heatPayload})
	server := MustCreateServer(t, db, upstream.URL)
	alice := mustSignTestToken(t, "alice")
	bob := mustSignTestToken(t, "bob")

	t.Run("first read fetches, second read is cached", func(t *testing.T) {
		first := serve(t, server.Router, newRequest(t, http.MethodGet, "/api/movies/tt0113277", nil, ""))
		second := serve(t, server.Router, newRequest(t, http.MethodGet, "/api/movies/tt0113277", nil, ""))

		require.Equal(t, http.StatusOK, first.Code)
		require.Equal(t, http.StatusOK, second.Code)
		var fetched, cached movie.Result
		decodeAPIResult(t, decodeAPIResponse(t, first).Result, &fetched)
		decodeAPIResult(t, decodeAPIResponse(t, second).Result, &cached)
		assert.Equal(t, movie.OutcomeFetched, fetched.Outcome)
		assert.Equal(t, movie.OutcomeCached, cached.Outcome)
		assert.Equal(t, fetched.Movie, cached.Movie)
		assert.Empty(t, cached.Movie.Poster)
	})

	t.Run("unknown ids are not stored", func(t *testing.T) {
		rec := serve(t, server.Router, newRequest(t, http.MethodGet, "/api/movies/tt0000000", nil, ""))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not_found", decodeAPIResponse(t, rec).Info)
		var count int64
		require.NoError(t, db.Table("movies").Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("lists and ratings reference cached movies", func(t *testing.T) {
		rec := serve(t, server.Router, newRequest(t, http.MethodPost, "/api/lists", map[string]interface{}{"title": "Crime", "is_public": false}, alice))
		require.Equal(t, http.StatusCreated, rec.Code)
		var created list.List
		decodeAPIResult(t, decodeAPIResponse(t, rec).Result, &created)

		rec = serve(t, server.Router, newRequest(t, http.MethodPost, "/api/lists/"+itoa(created.ID)+"/movies", map[string]string{"imdb_id": "tt0113277"}, alice))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = serve(t, server.Router, newRequest(t, http.MethodGet, "/api/lists/"+itoa(created.ID), nil, alice))
		require.Equal(t, http.StatusOK, rec.Code)
		var details list.Details
		decodeAPIResult(t, decodeAPIResponse(t, rec).Result, &details)
		require.Len(t, details.Movies, 1)
		assert.Equal(t, "Heat", details.Movies[0].Title)

		rec = serve(t, server.Router, newRequest(t, http.MethodGet, "/api/lists/"+itoa(created.ID), nil, bob))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = serve(t, server.Router, newRequest(t, http.MethodPut, "/api/movies/tt0113277/rating", map[string]interface{}{"value": 9}, alice))
		require.Equal(t, http.StatusOK, rec.Code)
		rec = serve(t, server.Router, newRequest(t, http.MethodPut, "/api/movies/tt0113277/rating", map[string]interface{}{"value": 8}, bob))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = serve(t, server.Router, newRequest(t, http.MethodGet, "/api/movies/tt0113277/ratings", nil, ""))
		require.Equal(t, http.StatusOK, rec.Code)
		var summary rating.Summary
		decodeAPIResult(t, decodeAPIResponse(t, rec).Result, &summary)
		assert.Equal(t, 2, summary.Count)
		assert.InDelta(t, 8.5, summary.Average, 0.001)
	})
}
