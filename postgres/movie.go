package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinelist/movie"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MovieModel represents the database model for cached movies.
// Column sizes must stay in sync with migrations.
type MovieModel struct {
	ImdbID     string    `gorm:"column:imdb_id;primaryKey;size:20"`
	Title      string    `gorm:"size:200;not null;default:''"`
	Year       string    `gorm:"size:10"`
	Rated      string    `gorm:"size:10"`
	Released   string    `gorm:"size:20"`
	Runtime    string    `gorm:"size:20"`
	Genre      string    `gorm:"size:100"`
	Director   string    `gorm:"size:200"`
	Writer     string    `gorm:"size:500"`
	Actors     string    `gorm:"size:500"`
	Plot       string    `gorm:"size:1000"`
	Language   string    `gorm:"size:100"`
	Country    string    `gorm:"size:100"`
	Poster     string    `gorm:"size:500"`
	ImdbRating string    `gorm:"column:imdb_rating;size:10"`
	Type       string    `gorm:"size:50"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (MovieModel) TableName() string {
	return "movies"
}

// MovieRepository implements movie.Repository on top of the movies table.
type MovieRepository struct {
	db *gorm.DB
}

// NewMovieRepository creates a new movie repository
func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

func (r *MovieRepository) Lookup(ctx context.Context, imdbID string) (movie.Movie, bool, error) {
	var model MovieModel

	err := r.db.WithContext(ctx).Where("imdb_id = ?", imdbID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return movie.Movie{}, false, nil
		}
		return movie.Movie{}, false, fmt.Errorf("lookup movie %s: %w", imdbID, err)
	}

	return toDomainMovie(model), true, nil
}

// Insert stores m. A row with the same imdb id is left untouched and
// movie.ErrAlreadyCached is returned.
func (r *MovieRepository) Insert(ctx context.Context, m movie.Movie) error {
	model := toMovieModel(m)

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return movie.ErrAlreadyCached
		}
		return fmt.Errorf("insert movie %s: %w", m.ImdbID, res.Error)
	}
	if res.RowsAffected == 0 {
		return movie.ErrAlreadyCached
	}

	return nil
}

func (r *MovieRepository) Random(ctx context.Context) (movie.Movie, bool, error) {
	var models []MovieModel

	err := r.db.WithContext(ctx).Order("random()").Limit(1).Find(&models).Error
	if err != nil {
		return movie.Movie{}, false, fmt.Errorf("random movie: %w", err)
	}
	if len(models) == 0 {
		return movie.Movie{}, false, nil
	}

	return toDomainMovie(models[0]), true, nil
}

func toMovieModel(m movie.Movie) MovieModel {
	m = m.Bounded()
	return MovieModel{
		ImdbID:     m.ImdbID,
		Title:      m.Title,
		Year:       m.Year,
		Rated:      m.Rated,
		Released:   m.Released,
		Runtime:    m.Runtime,
		Genre:      m.Genre,
		Director:   m.Director,
		Writer:     m.Writer,
		Actors:     m.Actors,
		Plot:       m.Plot,
		Language:   m.Language,
		Country:    m.Country,
		Poster:     m.Poster,
		ImdbRating: m.ImdbRating,
		Type:       m.Type,
	}
}

func toDomainMovie(model MovieModel) movie.Movie {
	return movie.Movie{
		ImdbID:     model.ImdbID,
		Title:      model.Title,
		Year:       model.Year,
		Rated:      model.Rated,
		Released:   model.Released,
		Runtime:    model.Runtime,
		Genre:      model.Genre,
		Director:   model.Director,
		Writer:     model.Writer,
		Actors:     model.Actors,
		Plot:       model.Plot,
		Language:   model.Language,
		Country:    model.Country,
		Poster:     model.Poster,
		ImdbRating: model.ImdbRating,
		Type:       model.Type,
	}
}
