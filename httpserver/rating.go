package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"cinelist/errs"

	"github.com/labstack/echo/v4"
)

var errRatingServiceMissing = errs.Errorf(errs.ENOTIMPLEMENTED, "rating service not configured")

func (s *Server) RegisterPublicRatingRoutes(g *echo.Group) {
	g.GET("/movies/:id/ratings", s.handleMovieSummary)
	g.GET("/ratings/top", s.handleTopRated)
}

func (s *Server) RegisterPrivateRatingRoutes(g *echo.Group) {
	g.PUT("/movies/:id/rating", s.handleRateMovie)
	g.GET("/movies/:id/rating", s.handleGetRating)
	g.DELETE("/movies/:id/rating", s.handleDeleteRating)
}

// handleMovieSummary godoc
// @Summary Movie Rating Summary
// @Description Average and count of user ratings for a movie
// @Tags ratings
// @Produce json
// @Param id path string true "IMDb id"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/movies/{id}/ratings [get]
func (s *Server) handleMovieSummary(c echo.Context) error {
	if s.RatingService == nil {
		return errRatingServiceMissing
	}

	summary, err := s.RatingService.MovieSummary(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusOK, summary)
}

// handleTopRated godoc
// @Summary Top Rated Movies
// @Description Movies ordered by average user rating
// @Tags ratings
// @Produce json
// @Param limit query int false "Max results (1-50), default 10"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /api/ratings/top [get]
func (s *Server) handleTopRated(c echo.Context) error {
	if s.RatingService == nil {
		return errRatingServiceMissing
	}

	limit := 0
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return errs.Errorf(errs.EINVALID, "invalid limit")
		}
		limit = parsed
	}

	top, err := s.RatingService.TopRated(c.Request().Context(), limit)
	if err != nil {
		return err
	}

	return writeList(c, http.StatusOK, top)
}

// handleRateMovie godoc
// @Summary Rate Movie
// @Description Create or replace the caller's rating for a movie
// @Tags ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "IMDb id"
// @Param request body RateMovieRequest true "Rating"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/movies/{id}/rating [put]
func (s *Server) handleRateMovie(c echo.Context) error {
	if s.RatingService == nil {
		return errRatingServiceMissing
	}

	var req RateMovieRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	r, err := s.RatingService.Rate(c.Request().Context(), userID(c), c.Param("id"), req.Value, req.Review)
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusOK, r)
}

// handleGetRating godoc
// @Summary Get My Rating
// @Tags ratings
// @Produce json
// @Security BearerAuth
// @Param id path string true "IMDb id"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/movies/{id}/rating [get]
func (s *Server) handleGetRating(c echo.Context) error {
	if s.RatingService == nil {
		return errRatingServiceMissing
	}

	r, err := s.RatingService.UserRating(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusOK, r)
}

// handleDeleteRating godoc
// @Summary Delete My Rating
// @Tags ratings
// @Security BearerAuth
// @Param id path string true "IMDb id"
// @Success 204
// @Failure 404 {object} APIResponse
// @Router /api/movies/{id}/rating [delete]
func (s *Server) handleDeleteRating(c echo.Context) error {
	if s.RatingService == nil {
		return errRatingServiceMissing
	}

	if err := s.RatingService.DeleteRating(c.Request().Context(), userID(c), c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
