package rating

import (
	"context"
	"strings"
	"unicode/utf8"

	"cinelist/movie"
)

type Service interface {
	Rate(ctx context.Context, userID, imdbID string, value int, review string) (Rating, error)
	UserRating(ctx context.Context, userID, imdbID string) (Rating, error)
	DeleteRating(ctx context.Context, userID, imdbID string) error
	MovieSummary(ctx context.Context, imdbID string) (Summary, error)
	TopRated(ctx context.Context, limit int) ([]Summary, error)
}

// Repository persists ratings. Upsert receives the rated movie so stores with
// a foreign key on the movie can make sure the row exists. Get and Delete
// return ErrRatingNotFound when the user has not rated the movie.
type Repository interface {
	Upsert(ctx context.Context, m movie.Movie, r Rating) (Rating, error)
	Get(ctx context.Context, userID, imdbID string) (Rating, error)
	Delete(ctx context.Context, userID, imdbID string) error
	Score(ctx context.Context, imdbID string) (Score, error)
	Top(ctx context.Context, limit int) ([]Score, error)
}

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

func (uc *Usecase) Rate(ctx context.Context, userID, imdbID string, value int, review string) (Rating, error) {
	if userID == "" {
		return Rating{}, ErrUserIDRequired
	}
	if value < MinValue || value > MaxValue {
		return Rating{}, ErrInvalidValue
	}
	review = strings.TrimSpace(review)
	if utf8.RuneCountInString(review) > MaxReviewLength {
		return Rating{}, ErrReviewTooLong
	}

	res, err := uc.movies.GetOrAdd(ctx, imdbID)
	if err != nil {
		return Rating{}, err
	}
	if !res.Found() {
		return Rating{}, movie.ErrNotFound
	}

	return uc.r.Upsert(ctx, res.Movie, Rating{
		UserID: userID,
		ImdbID: res.Movie.ImdbID,
		Value:  value,
		Review: review,
	})
}

func (uc *Usecase) UserRating(ctx context.Context, userID, imdbID string) (Rating, error) {
	imdbID, err := uc.checkKey(userID, imdbID)
	if err != nil {
		return Rating{}, err
	}
	return uc.r.Get(ctx, userID, imdbID)
}

func (uc *Usecase) DeleteRating(ctx context.Context, userID, imdbID string) error {
	imdbID, err := uc.checkKey(userID, imdbID)
	if err != nil {
		return err
	}
	return uc.r.Delete(ctx, userID, imdbID)
}

// MovieSummary returns the average and number of ratings of a movie. A movie
// nobody rated yet has a zero summary.
func (uc *Usecase) MovieSummary(ctx context.Context, imdbID string) (Summary, error) {
	res, err := uc.movies.GetOrAdd(ctx, imdbID)
	if err != nil {
		return Summary{}, err
	}
	if !res.Found() {
		return Summary{}, movie.ErrNotFound
	}

	s, err := uc.r.Score(ctx, res.Movie.ImdbID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Movie: res.Movie, Average: s.Average, Count: s.Count}, nil
}

// TopRated ranks movies by average rating, then by number of ratings.
func (uc *Usecase) TopRated(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	if limit > MaxTopLimit {
		limit = MaxTopLimit
	}

	scores, err := uc.r.Top(ctx, limit)
	if err != nil {
		return nil, err
	}

	top := make([]Summary, 0, len(scores))
	for _, s := range scores {
		res, err := uc.movies.GetOrAdd(ctx, s.ImdbID)
		if err != nil || !res.Found() {
			continue
		}
		top = append(top, Summary{Movie: res.Movie, Average: s.Average, Count: s.Count})
	}
	return top, nil
}

func (uc *Usecase) checkKey(userID, imdbID string) (string, error) {
	if userID == "" {
		return "", ErrUserIDRequired
	}
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return "", movie.ErrInvalidID
	}
	return imdbID, nil
}
