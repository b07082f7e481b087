package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinelist/movie"
	"cinelist/rating"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingModel represents the database model for movie ratings
type RatingModel struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    string     `gorm:"not null"`
	ImdbID    string     `gorm:"column:imdb_id;size:20;not null"`
	Value     int        `gorm:"not null"`
	Review    string     `gorm:"size:1000;not null;default:''"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false"`
}

// TableName specifies the table name for GORM
func (RatingModel) TableName() string {
	return "movie_ratings"
}

type scoreRow struct {
	ImdbID  string
	Average float64
	Count   int
}

// RatingRepository implements rating.Repository interface
type RatingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert writes the user's rating for the movie, replacing value and review
// of an earlier one. The movie row is inserted first when the movie cache
// lives in another store.
func (r *RatingRepository) Upsert(ctx context.Context, m movie.Movie, rt rating.Rating) (rating.Rating, error) {
	var stored RatingModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mm := toMovieModel(m)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&mm).Error; err != nil {
			return fmt.Errorf("ensure movie %s: %w", m.ImdbID, err)
		}

		model := RatingModel{UserID: rt.UserID, ImdbID: rt.ImdbID, Value: rt.Value, Review: rt.Review}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "imdb_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value":      rt.Value,
				"review":     rt.Review,
				"updated_at": time.Now(),
			}),
		}).Create(&model).Error
		if err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}

		return tx.Where("user_id = ? AND imdb_id = ?", rt.UserID, rt.ImdbID).First(&stored).Error
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return rating.Rating{}, movie.ErrNotFound
		}
		return rating.Rating{}, err
	}

	return toDomainRating(stored), nil
}

func (r *RatingRepository) Get(ctx context.Context, userID, imdbID string) (rating.Rating, error) {
	var model RatingModel
	err := r.db.WithContext(ctx).Where("user_id = ? AND imdb_id = ?", userID, imdbID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rating.Rating{}, rating.ErrRatingNotFound
		}
		return rating.Rating{}, fmt.Errorf("get rating: %w", err)
	}
	return toDomainRating(model), nil
}

func (r *RatingRepository) Delete(ctx context.Context, userID, imdbID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND imdb_id = ?", userID, imdbID).Delete(&RatingModel{})
	if res.Error != nil {
		return fmt.Errorf("delete rating: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return rating.ErrRatingNotFound
	}
	return nil
}

func (r *RatingRepository) Score(ctx context.Context, imdbID string) (rating.Score, error) {
	const sql = `
SELECT imdb_id, AVG(value)::float8 AS average, COUNT(*) AS count
FROM movie_ratings
WHERE imdb_id = ?
GROUP BY imdb_id`

	var rows []scoreRow
	if err := r.db.WithContext(ctx).Raw(sql, imdbID).Scan(&rows).Error; err != nil {
		return rating.Score{}, fmt.Errorf("rating score: %w", err)
	}
	if len(rows) == 0 {
		return rating.Score{ImdbID: imdbID}, nil
	}
	return rating.Score(rows[0]), nil
}

func (r *RatingRepository) Top(ctx context.Context, limit int) ([]rating.Score, error) {
	const sql = `
SELECT imdb_id, AVG(value)::float8 AS average, COUNT(*) AS count
FROM movie_ratings
GROUP BY imdb_id
ORDER BY average DESC, count DESC, imdb_id
LIMIT ?`

	var rows []scoreRow
	if err := r.db.WithContext(ctx).Raw(sql, limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("top rated: %w", err)
	}

	scores := make([]rating.Score, len(rows))
	for i, row := range rows {
		scores[i] = rating.Score(row)
	}
	return scores, nil
}

func toDomainRating(m RatingModel) rating.Rating {
	return rating.Rating{
		ID:        m.ID,
		UserID:    m.UserID,
		ImdbID:    m.ImdbID,
		Value:     m.Value,
		Review:    m.Review,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
