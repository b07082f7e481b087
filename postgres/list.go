package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinelist/list"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListModel represents the database model for movie lists
type ListModel struct {
	ID        int64     `gorm:"primaryKey"`
	Title     string    `gorm:"size:100;not null"`
	IsPublic  bool      `gorm:"not null;default:false"`
	UserID    string    `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ListModel) TableName() string {
	return "movie_lists"
}

// ListItemModel represents one movie on a list
type ListItemModel struct {
	ID      int64     `gorm:"primaryKey"`
	ListID  int64     `gorm:"not null"`
	ImdbID  string    `gorm:"column:imdb_id;size:20;not null"`
	AddedAt time.Time `gorm:"not null;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ListItemModel) TableName() string {
	return "movie_list_items"
}

// ListRepository implements list.Repository interface
type ListRepository struct {
	db *gorm.DB
}

// NewListRepository creates a new list repository
func NewListRepository(db *gorm.DB) *ListRepository {
	return &ListRepository{db: db}
}

func (r *ListRepository) CreateList(ctx context.Context, l list.List) (list.List, error) {
	model := ListModel{Title: l.Title, IsPublic: l.IsPublic, UserID: l.UserID}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return list.List{}, fmt.Errorf("create list: %w", err)
	}
	return toDomainList(model), nil
}

func (r *ListRepository) ListsByUser(ctx context.Context, userID string) ([]list.List, error) {
	var models []ListModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("lists by user: %w", err)
	}
	return toDomainLists(models), nil
}

func (r *ListRepository) PublicLists(ctx context.Context) ([]list.List, error) {
	var models []ListModel
	err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Order("created_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("public lists: %w", err)
	}
	return toDomainLists(models), nil
}

func (r *ListRepository) GetList(ctx context.Context, listID int64) (list.List, error) {
	var model ListModel
	err := r.db.WithContext(ctx).Where("id = ?", listID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return list.List{}, list.ErrListNotFound
		}
		return list.List{}, fmt.Errorf("get list %d: %w", listID, err)
	}
	return toDomainList(model), nil
}

func (r *ListRepository) Items(ctx context.Context, listID int64) ([]list.Item, error) {
	var models []ListItemModel
	err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("added_at, id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list items %d: %w", listID, err)
	}

	items := make([]list.Item, len(models))
	for i, m := range models {
		items[i] = list.Item{ID: m.ID, ListID: m.ListID, ImdbID: m.ImdbID, AddedAt: m.AddedAt}
	}
	return items, nil
}

// AddItem is a no-op when the movie is already on the list.
func (r *ListRepository) AddItem(ctx context.Context, listID int64, imdbID string) error {
	model := ListItemModel{ListID: listID, ImdbID: imdbID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "list_id"}, {Name: "imdb_id"}},
			DoNothing: true,
		}).
		Create(&model).Error
	if err != nil {
		if isForeignKeyViolation(err) {
			return list.ErrListNotFound
		}
		return fmt.Errorf("add list item: %w", err)
	}
	return nil
}

func (r *ListRepository) RemoveItem(ctx context.Context, listID int64, imdbID string) error {
	err := r.db.WithContext(ctx).
		Where("list_id = ? AND imdb_id = ?", listID, imdbID).
		Delete(&ListItemModel{}).Error
	if err != nil {
		return fmt.Errorf("remove list item: %w", err)
	}
	return nil
}

// DeleteList removes the list; its items go with it through ON DELETE CASCADE.
func (r *ListRepository) DeleteList(ctx context.Context, listID int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", listID).Delete(&ListModel{})
	if res.Error != nil {
		return fmt.Errorf("delete list %d: %w", listID, res.Error)
	}
	if res.RowsAffected == 0 {
		return list.ErrListNotFound
	}
	return nil
}

func toDomainList(m ListModel) list.List {
	return list.List{
		ID:        m.ID,
		Title:     m.Title,
		IsPublic:  m.IsPublic,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
	}
}

func toDomainLists(models []ListModel) []list.List {
	lists := make([]list.List, len(models))
	for i, m := range models {
		lists[i] = toDomainList(m)
	}
	return lists
}
