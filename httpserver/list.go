package httpserver

import (
	"net/http"

	"cinelist/errs"

	"github.com/labstack/echo/v4"
)

var errListServiceMissing = errs.Errorf(errs.ENOTIMPLEMENTED, "list service not configured")

func (s *Server) RegisterPublicListRoutes(g *echo.Group) {
	g.GET("/lists/public", s.handlePublicLists)
	g.GET("/lists/:id", s.handleGetList, s.optionalAuth)
}

func (s *Server) RegisterPrivateListRoutes(g *echo.Group) {
	g.GET("/lists/mine", s.handleMyLists)
	g.POST("/lists", s.handleCreateList)
	g.DELETE("/lists/:id", s.handleDeleteList)
	g.POST("/lists/:id/movies", s.handleAddListMovie)
	g.DELETE("/lists/:id/movies/:imdbID", s.handleRemoveListMovie)
}

// handlePublicLists godoc
// @Summary Public Lists
// @Description Lists shared by all users, newest first
// @Tags lists
// @Produce json
// @Success 200 {object} APIResponse
// @Router /api/lists/public [get]
func (s *Server) handlePublicLists(c echo.Context) error {
	if s.ListService == nil {
		return errListServiceMissing
	}

	lists, err := s.ListService.PublicLists(c.Request().Context())
	if err != nil {
		return err
	}

	return writeList(c, http.StatusOK, lists)
}

// handleMyLists godoc
// @Summary My Lists
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Router /api/lists/mine [get]
func (s *Server) handleMyLists(c echo.Context) error {
	if s.ListService == nil {
		return errListServiceMissing
	}

	lists, err := s.ListService.MyLists(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}

	return writeList(c, http.StatusOK, lists)
}

// handleCreateList godoc
// @Summary Create List
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateListRequest true "List"
// @Success 201 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Router /api/lists [post]
func (s *Server) handleCreateList(c echo.Context) error {
	if s.ListService == nil {
		return errListServiceMissing
	}

	var req CreateListRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	l, err := s.ListService.CreateList(c.Request().Context(), userID(c), req.Title, req.IsPublic)
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusCreated, l)
}

// handleGetList godoc
// @Summary Get List
// @Description A list with its movies. Private lists are only visible to their owner.
// @Tags lists
// @Produce json
// @Param id path int true "List id"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/lists/{id} [get]
func (s *Server) handleGetList(c echo.Context) error {
	if s.ListService == nil {
		return errListServiceMissing
	}

	id, err := listIDParam(c)
	if err != nil {
		return err
	}

	details, err := s.ListService.GetList(c.Request().Context(), userID(c), id)
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusOK, details)
}

// handleDeleteList godoc
// @Summary Delete List
// @Tags lists
// @Security BearerAuth
// @Param id path int true "List id"
// @Success 204
// @Failure 403 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/lists/{id} [delete]
func (s *Server) handleDeleteList(c echo.Context) error {
	if s.ListService == nil {
		return errListServiceMissing
	}

	id, err := listIDParam(c)
	if err != nil {
		return err
	}

	if err := s.ListService.DeleteList(c.Request().Context(), userID(c), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// handleAddListMovie godoc
// @Summary Add Movie To List
// @Tags lists
// @Accept json
// @Security BearerAuth
// @Param id path int true "List id"
// @Param request body AddListMovieRequest true "Movie"
// @Success 201
// @Failure 400 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/lists/{id}/movies [post]
func (s *Server) handleAddListMovie(c echo.Context) error {
	if s.ListService == nil {
		return errListServiceMissing
	}

	id, err := listIDParam(c)
	if err != nil {
		return err
	}

	var req AddListMovieRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.ListService.AddMovie(c.Request().Context(), userID(c), id, req.ImdbID); err != nil {
		return err
	}

	return c.NoContent(http.StatusCreated)
}

// handleRemoveListMovie godoc
// @Summary Remove Movie From List
// @Tags lists
// @Security BearerAuth
// @Param id path int true "List id"
// @Param imdbID path string true "IMDb id"
// @Success 204
// @Failure 403 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/lists/{id}/movies/{imdbID} [delete]
func (s *Server) handleRemoveListMovie(c echo.Context) error {
	if s.ListService == nil {
		return errListServiceMissing
	}

	id, err := listIDParam(c)
	if err != nil {
		return err
	}

	if err := s.ListService.RemoveMovie(c.Request().Context(), userID(c), id, c.Param("imdbID")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
