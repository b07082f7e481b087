package list

import (
	"strings"
	"time"
	"unicode/utf8"

	"cinelist/errs"
	"cinelist/movie"
)

const MaxTitleLength = 100

var (
	ErrUserIDRequired = errs.Errorf(errs.EUNAUTHORIZED, "user id is required")
	ErrInvalidTitle   = errs.Errorf(errs.EINVALID, "list title must be between 1 and 100 characters")
	ErrInvalidListID  = errs.Errorf(errs.EINVALID, "invalid list id")
	ErrListNotFound   = errs.Errorf(errs.ENOTFOUND, "list not found")
	ErrForbidden      = errs.Errorf(errs.EFORBIDDEN, "only the owner can change this list")
)

type List struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	IsPublic  bool      `json:"is_public"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// VisibleTo reports whether userID may read the list. Public lists are
// readable by anyone, including anonymous callers.
func (l List) VisibleTo(userID string) bool {
	return l.IsPublic || (userID != "" && l.UserID == userID)
}

func (l List) OwnedBy(userID string) bool {
	return userID != "" && l.UserID == userID
}

type Item struct {
	ID      int64     `json:"id"`
	ListID  int64     `json:"list_id"`
	ImdbID  string    `json:"imdb_id"`
	AddedAt time.Time `json:"added_at"`
}

// Details is a list together with the movies on it, in the order they were
// added.
type Details struct {
	List
	Movies []movie.Movie `json:"movies"`
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > MaxTitleLength {
		return "", ErrInvalidTitle
	}
	return title, nil
}
