// Package store builds the movie repository selected by STORE_DRIVER so every
// binary caches into the same place.
package store

import (
	"context"
	"errors"
	"fmt"

	"cinelist/dynamodb"
	"cinelist/memory"
	"cinelist/movie"
	"cinelist/pkg/config"
	"cinelist/postgres"

	"gorm.io/gorm"
)

var ErrNoDatabase = errors.New("store: postgres driver selected but no connection was opened")

// NeedsPostgres reports whether cfg asks for a postgres connection. Lists and
// ratings live in postgres whatever store caches the movies.
func NeedsPostgres(cfg *config.Config) bool {
	return cfg.StoreDriver == config.StorePostgres || cfg.DB.Host != ""
}

func OpenPostgres(cfg *config.Config) (*gorm.DB, error) {
	return postgres.NewConnection(postgres.Options{
		DBName:   cfg.DB.Name,
		DBUser:   cfg.DB.User,
		Password: cfg.DB.Pass,
		Host:     cfg.DB.Host,
		Port:     fmt.Sprintf("%d", cfg.DB.Port),
		SSLMode:  cfg.DB.EnableSSL,
	})
}

// NewMovieRepository returns the repository for cfg.StoreDriver, wrapped in
// the in-process LRU when CACHE_LRU_SIZE is positive. db is only used by the
// postgres driver.
func NewMovieRepository(ctx context.Context, cfg *config.Config, db *gorm.DB) (movie.Repository, error) {
	var repo movie.Repository

	switch cfg.StoreDriver {
	case config.StoreDynamoDB:
		client, err := dynamodb.NewClient(ctx, dynamodb.Options{
			Region:       cfg.DynamoDB.Region,
			Endpoint:     cfg.DynamoDB.Endpoint,
			AccessKey:    cfg.DynamoDB.AccessKey,
			SecretKey:    cfg.DynamoDB.SecretKey,
			SessionToken: cfg.DynamoDB.SessionToken,
		})
		if err != nil {
			return nil, err
		}
		// Local endpoints start empty.
		if cfg.DynamoDB.Endpoint != "" {
			if err := dynamodb.EnsureTable(ctx, client, cfg.DynamoDB.MoviesTable, dynamodb.MovieHashKey); err != nil {
				return nil, err
			}
		}
		repo = dynamodb.NewMovieRepository(client, cfg.DynamoDB.MoviesTable)
	case config.StoreMemory:
		repo = memory.NewMovieRepository()
	case config.StorePostgres:
		if db == nil {
			return nil, ErrNoDatabase
		}
		repo = postgres.NewMovieRepository(db)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.StoreDriver)
	}

	if cfg.Cache.LRUSize > 0 {
		cached, err := memory.NewCachedRepository(repo, cfg.Cache.LRUSize)
		if err != nil {
			return nil, err
		}
		return cached, nil
	}
	return repo, nil
}
