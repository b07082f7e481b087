package list

import (
	"context"
	"strings"

	"cinelist/movie"
)

type Service interface {
	CreateList(ctx context.Context, userID, title string, isPublic bool) (List, error)
	MyLists(ctx context.Context, userID string) ([]List, error)
	PublicLists(ctx context.Context) ([]List, error)
	GetList(ctx context.Context, userID string, listID int64) (Details, error)
	AddMovie(ctx context.Context, userID string, listID int64, imdbID string) error
	RemoveMovie(ctx context.Context, userID string, listID int64, imdbID string) error
	DeleteList(ctx context.Context, userID string, listID int64) error
}

// Repository persists lists and their items. GetList returns ErrListNotFound
// for unknown ids and AddItem must ignore an id that is already on the list.
type Repository interface {
	CreateList(ctx context.Context, l List) (List, error)
	ListsByUser(ctx context.Context, userID string) ([]List, error)
	PublicLists(ctx context.Context) ([]List, error)
	GetList(ctx context.Context, listID int64) (List, error)
	Items(ctx context.Context, listID int64) ([]Item, error)
	AddItem(ctx context.Context, listID int64, imdbID string) error
	RemoveItem(ctx context.Context, listID int64, imdbID string) error
	DeleteList(ctx context.Context, listID int64) error
}

// Movies resolves imdb ids into movies, fetching unknown ones.
type Movies interface {
	GetOrAdd(ctx context.Context, imdbID string) (movie.Result, error)
}

type Usecase struct {
	r      Repository
	movies Movies
}

func NewUsecase(r Repository, movies Movies) *Usecase {
	return &Usecase{r: r, movies: movies}
}

func (uc *Usecase) CreateList(ctx context.Context, userID, title string, isPublic bool) (List, error) {
	if userID == "" {
		return List{}, ErrUserIDRequired
	}
	title, err := normalizeTitle(title)
	if err != nil {
		return List{}, err
	}

	return uc.r.CreateList(ctx, List{Title: title, IsPublic: isPublic, UserID: userID})
}

func (uc *Usecase) MyLists(ctx context.Context, userID string) ([]List, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	return uc.r.ListsByUser(ctx, userID)
}

func (uc *Usecase) PublicLists(ctx context.Context) ([]List, error) {
	return uc.r.PublicLists(ctx)
}

// GetList returns the list with its movies. Private lists of other users are
// reported as missing rather than forbidden so their existence is not leaked.
func (uc *Usecase) GetList(ctx context.Context, userID string, listID int64) (Details, error) {
	l, err := uc.visibleList(ctx, userID, listID)
	if err != nil {
		return Details{}, err
	}

	items, err := uc.r.Items(ctx, listID)
	if err != nil {
		return Details{}, err
	}

	movies := make([]movie.Movie, 0, len(items))
	for _, it := range items {
		res, err := uc.movies.GetOrAdd(ctx, it.ImdbID)
		if err != nil || !res.Found() {
			continue
		}
		movies = append(movies, res.Movie)
	}

	return Details{List: l, Movies: movies}, nil
}

func (uc *Usecase) AddMovie(ctx context.Context, userID string, listID int64, imdbID string) error {
	if _, err := uc.ownedList(ctx, userID, listID); err != nil {
		return err
	}

	res, err := uc.movies.GetOrAdd(ctx, imdbID)
	if err != nil {
		return err
	}
	if !res.Found() {
		return movie.ErrNotFound
	}

	return uc.r.AddItem(ctx, listID, res.Movie.ImdbID)
}

// RemoveMovie is idempotent: removing a movie that is not on the list succeeds.
func (uc *Usecase) RemoveMovie(ctx context.Context, userID string, listID int64, imdbID string) error {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return movie.ErrInvalidID
	}
	if _, err := uc.ownedList(ctx, userID, listID); err != nil {
		return err
	}
	return uc.r.RemoveItem(ctx, listID, imdbID)
}

func (uc *Usecase) DeleteList(ctx context.Context, userID string, listID int64) error {
	if _, err := uc.ownedList(ctx, userID, listID); err != nil {
		return err
	}
	return uc.r.DeleteList(ctx, listID)
}

func (uc *Usecase) visibleList(ctx context.Context, userID string, listID int64) (List, error) {
	if listID <= 0 {
		return List{}, ErrInvalidListID
	}
	l, err := uc.r.GetList(ctx, listID)
	if err != nil {
		return List{}, err
	}
	if !l.VisibleTo(userID) {
		return List{}, ErrListNotFound
	}
	return l, nil
}

func (uc *Usecase) ownedList(ctx context.Context, userID string, listID int64) (List, error) {
	if userID == "" {
		return List{}, ErrUserIDRequired
	}
	l, err := uc.visibleList(ctx, userID, listID)
	if err != nil {
		return List{}, err
	}
	if !l.OwnedBy(userID) {
		return List{}, ErrForbidden
	}
	return l, nil
}
