package rating

import (
	"time"

	"cinelist/errs"
	"cinelist/movie"
)

const (
	MinValue        = 1
	MaxValue        = 10
	MaxReviewLength = 1000

	DefaultTopLimit = 10
	MaxTopLimit     = 50
)

var (
	ErrUserIDRequired = errs.Errorf(errs.EUNAUTHORIZED, "user id is required")
	ErrInvalidValue   = errs.Errorf(errs.EINVALID, "rating must be between 1 and 10")
	ErrReviewTooLong  = errs.Errorf(errs.EINVALID, "review must be at most 1000 characters")
	ErrRatingNotFound = errs.Errorf(errs.ENOTFOUND, "rating not found")
)

// Rating is one user's score for one movie. A user holds at most one rating
// per movie; rating again replaces the value and review.
type Rating struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"user_id"`
	ImdbID    string     `json:"imdb_id"`
	Value     int        `json:"value"`
	Review    string     `json:"review,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Score is the aggregate of all ratings of one movie.
type Score struct {
	ImdbID  string
	Average float64
	Count   int
}

type Summary struct {
	Movie   movie.Movie `json:"movie"`
	Average float64     `json:"average"`
	Count   int         `json:"count"`
}
