package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"cinelist/movie"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	MovieHashKey = "imdb_id"

	// randomScanLimit bounds the page Random picks from.
	randomScanLimit = 50
)

type movieItem struct {
	ImdbID     string `dynamodbav:"imdb_id"`
	Title      string `dynamodbav:"title"`
	Year       string `dynamodbav:"year,omitempty"`
	Rated      string `dynamodbav:"rated,omitempty"`
	Released   string `dynamodbav:"released,omitempty"`
	Runtime    string `dynamodbav:"runtime,omitempty"`
	Genre      string `dynamodbav:"genre,omitempty"`
	Director   string `dynamodbav:"director,omitempty"`
	Writer     string `dynamodbav:"writer,omitempty"`
	Actors     string `dynamodbav:"actors,omitempty"`
	Plot       string `dynamodbav:"plot,omitempty"`
	Language   string `dynamodbav:"language,omitempty"`
	Country    string `dynamodbav:"country,omitempty"`
	Poster     string `dynamodbav:"poster,omitempty"`
	ImdbRating string `dynamodbav:"imdb_rating,omitempty"`
	Type       string `dynamodbav:"type,omitempty"`
	CreatedAt  string `dynamodbav:"created_at"`
}

// MovieRepository implements movie.Repository on a DynamoDB table keyed by
// imdb_id.
type MovieRepository struct {
	client API
	table  string
	now    func() string
}

func NewMovieRepository(client API, table string) *MovieRepository {
	return &MovieRepository{
		client: client,
		table:  table,
		now:    utcNow,
	}
}

func (r *MovieRepository) Lookup(ctx context.Context, imdbID string) (movie.Movie, bool, error) {
	if err := validateTable(r.table); err != nil {
		return movie.Movie{}, false, err
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.table,
		Key: map[string]types.AttributeValue{
			MovieHashKey: &types.AttributeValueMemberS{Value: imdbID},
		},
	})
	if err != nil {
		return movie.Movie{}, false, fmt.Errorf("dynamodb: get movie: %w", err)
	}
	if len(out.Item) == 0 {
		return movie.Movie{}, false, nil
	}

	var item movieItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return movie.Movie{}, false, fmt.Errorf("dynamodb: unmarshal movie: %w", err)
	}

	return item.toMovie(), true, nil
}

// Insert writes m unless an item with the same imdb id exists, in which case
// movie.ErrAlreadyCached is returned.
func (r *MovieRepository) Insert(ctx context.Context, m movie.Movie) error {
	if err := validateTable(r.table); err != nil {
		return err
	}

	item := toMovieItem(m.Bounded())
	item.CreatedAt = r.now()
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("dynamodb: marshal movie: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &r.table,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(imdb_id)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return movie.ErrAlreadyCached
		}
		return fmt.Errorf("dynamodb: put movie: %w", err)
	}

	return nil
}

// Random picks one item out of a single bounded scan page.
func (r *MovieRepository) Random(ctx context.Context) (movie.Movie, bool, error) {
	if err := validateTable(r.table); err != nil {
		return movie.Movie{}, false, err
	}

	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &r.table,
		Limit:     aws.Int32(randomScanLimit),
	})
	if err != nil {
		return movie.Movie{}, false, fmt.Errorf("dynamodb: scan movies: %w", err)
	}
	if len(out.Items) == 0 {
		return movie.Movie{}, false, nil
	}

	var item movieItem
	if err := attributevalue.UnmarshalMap(out.Items[rand.IntN(len(out.Items))], &item); err != nil {
		return movie.Movie{}, false, fmt.Errorf("dynamodb: unmarshal movie: %w", err)
	}

	return item.toMovie(), true, nil
}

func toMovieItem(m movie.Movie) movieItem {
	return movieItem{
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

func (i movieItem) toMovie() movie.Movie {
	return movie.Movie{
		ImdbID:     i.ImdbID,
		Title:      i.Title,
		Year:       i.Year,
		Rated:      i.Rated,
		Released:   i.Released,
		Runtime:    i.Runtime,
		Genre:      i.Genre,
		Director:   i.Director,
		Writer:     i.Writer,
		Actors:     i.Actors,
		Plot:       i.Plot,
		Language:   i.Language,
		Country:    i.Country,
		Poster:     i.Poster,
		ImdbRating: i.ImdbRating,
		Type:       i.Type,
	}
}

func utcNow() string {
	return time.Now().UTC().Format(time.RFC3339)
}
