package httpserver

import (
	"net/http"

	"cinelist/errs"
	"cinelist/movie"

	"github.com/labstack/echo/v4"
)

var errMovieServiceMissing = errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")

func (s *Server) RegisterPublicMovieRoutes(g *echo.Group) {
	g.GET("/movies/search", s.handleSearchMovies)
	g.GET("/movies/random", s.handleRandomMovie)
	g.GET("/movies/:id", s.handleGetMovie)
}

// handleSearchMovies godoc
// @Summary Search Movies
// @Description Search OMDb by title and return the matching movies, caching each hit
// @Tags movies
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /api/movies/search [get]
func (s *Server) handleSearchMovies(c echo.Context) error {
	if s.MovieService == nil {
		return errMovieServiceMissing
	}

	results, err := s.MovieService.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}

	return writeList(c, http.StatusOK, results)
}

// handleRandomMovie godoc
// @Summary Random Movie
// @Description Return a random movie from the local cache
// @Tags movies
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/movies/random [get]
func (s *Server) handleRandomMovie(c echo.Context) error {
	if s.MovieService == nil {
		return errMovieServiceMissing
	}

	m, err := s.MovieService.Random(c.Request().Context())
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusOK, m)
}

// handleGetMovie godoc
// @Summary Get Movie
// @Description Return a movie by imdb id, fetching and caching it on a miss
// @Tags movies
// @Produce json
// @Param id path string true "IMDb id"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/movies/{id} [get]
func (s *Server) handleGetMovie(c echo.Context) error {
	if s.MovieService == nil {
		return errMovieServiceMissing
	}

	res, err := s.MovieService.GetOrAdd(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !res.Found() {
		return writeError(c, http.StatusNotFound, errs.ErrorMessage(movie.ErrNotFound), string(res.Outcome), movie.ErrNotFound)
	}

	return writeSuccess(c, http.StatusOK, res)
}
