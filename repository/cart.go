package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/terragrow/storefront/database"
	"github.com/terragrow/storefront/models"
)

// CartRepository stores one document per (user, product) pair. The unique
// compound index makes the $inc upsert the only writer of a pair.
type CartRepository struct {
	col *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{col: db.Collection(database.CartItemsCollection)}
}

// Increment adds qty to the entry, creating it when absent.
func (r *CartRepository) Increment(ctx context.Context, userID, productID bson.ObjectID, qty int) error {
	now := time.Now().UTC()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID, "productId": productID},
		bson.M{
			"$inc":         bson.M{"quantity": qty},
			"$set":         bson.M{"updatedAt": now},
			"$setOnInsert": bson.M{"addedAt": now},
		},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil && IsDuplicateKey(err) {
		// Two concurrent upserts raced on insert; the loser retries as a plain update.
		_, err = r.col.UpdateOne(ctx,
			bson.M{"userId": userID, "productId": productID},
			bson.M{"$inc": bson.M{"quantity": qty}, "$set": bson.M{"updatedAt": now}},
		)
	}
	return translate(err, "cart item")
}

// SetQuantity overwrites the quantity of an existing entry.
func (r *CartRepository) SetQuantity(ctx context.Context, userID, productID bson.ObjectID, qty int) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID, "productId": productID},
		bson.M{"$set": bson.M{"quantity": qty, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return translate(err, "cart item")
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "cart item")
	}
	return nil
}

func (r *CartRepository) Remove(ctx context.Context, userID, productID bson.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"userId": userID, "productId": productID})
	return translate(err, "cart item")
}

func (r *CartRepository) Clear(ctx context.Context, userID bson.ObjectID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"userId": userID})
	return translate(err, "cart item")
}

// Snapshot rebuilds the user's full cart joined with product data, oldest
// entry first.
func (r *CartRepository) Snapshot(ctx context.Context, userID bson.ObjectID) ([]models.CartLine, error) {
	cursor, err := r.col.Aggregate(ctx, snapshotPipeline(userID))
	if err != nil {
		return nil, translate(err, "cart")
	}
	defer cursor.Close(ctx)

	lines := make([]models.CartLine, 0)
	if err := cursor.All(ctx, &lines); err != nil {
		return nil, translate(err, "cart")
	}
	return lines, nil
}

func snapshotPipeline(userID bson.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "addedAt", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.ProductsCollection,
			"localField":   "productId",
			"foreignField": "_id",
			"as":           "product",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$product", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"_id":              0,
			"productId":        1,
			"quantity":         1,
			"product._id":      1,
			"product.name":     1,
			"product.slug":     1,
			"product.price":    1,
			"product.discount": 1,
			"product.images":   1,
			"product.unit":     1,
			"product.stock":    1,
		}}},
	}
}
