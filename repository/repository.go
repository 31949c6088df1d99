package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/terragrow/storefront/utils"
)

// findPage runs a paginated find plus the matching count.
func findPage[T any](ctx context.Context, col *mongo.Collection, filter any, page utils.Page, sort bson.D, what string) ([]T, int64, error) {
	opts := options.Find().
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit)).
		SetSort(sort)

	items, err := findAll[T](ctx, col, filter, opts, what)
	if err != nil {
		return nil, 0, err
	}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(err, what)
	}
	return items, total, nil
}

func findAll[T any](ctx context.Context, col *mongo.Collection, filter any, opts *options.FindOptionsBuilder, what string) ([]T, error) {
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, what)
	}
	defer cursor.Close(ctx)

	items := make([]T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, translate(err, what)
	}
	return items, nil
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter any, what string) (*T, error) {
	var out T
	if err := col.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, translate(err, what)
	}
	return &out, nil
}

// Counter counts documents in any collection. It backs the dashboard.
type Counter struct {
	db *mongo.Database
}

func NewCounter(db *mongo.Database) *Counter {
	return &Counter{db: db}
}

func (c *Counter) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	n, err := c.db.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, translate(err, collection)
	}
	return n, nil
}
