package httpserver

import (
	"strconv"

	"cinelist/errs"
	"cinelist/list"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var errInvalidBody = errs.Errorf(errs.EINVALID, "invalid request body")

type CreateListRequest struct {
	Title    string `json:"title" validate:"required,notblank,max=100"`
	IsPublic bool   `json:"is_public"`
}

type AddListMovieRequest struct {
	ImdbID string `json:"imdb_id" validate:"required,notblank,max=20"`
}

type RateMovieRequest struct {
	Value  int    `json:"value" validate:"required,min=1,max=10"`
	Review string `json:"review" validate:"max=1000"`
}

// bindAndValidate decodes the body into req and runs the struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errInvalidBody
	}
	return c.Validate(req)
}

func listIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, list.ErrInvalidListID
	}
	return id, nil
}

// userID returns the caller id carried by the verified token: the sub claim,
// or user_id for tokens issued before sub was used. Anonymous requests get "".
func userID(c echo.Context) string {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok || token == nil {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub
	}
	switch v := claims["user_id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
