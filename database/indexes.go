package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	UsersCollection         = "users"
	RefreshTokensCollection = "refresh_tokens"
	ProductsCollection      = "products"
	CategoriesCollection    = "categories"
	BlogsCollection         = "blogs"
	CartItemsCollection     = "cart_items"
	OrdersCollection        = "orders"
	ReviewsCollection       = "reviews"
	ReturnsCollection       = "return_requests"
	RefundsCollection       = "refunds"
	NotificationsCollection = "notifications"
	NewsletterCollection    = "newsletter_subscribers"
)

func unique(keys ...string) mongo.IndexModel {
	doc := bson.D{}
	for _, k := range keys {
		doc = append(doc, bson.E{Key: k, Value: 1})
	}
	return mongo.IndexModel{Keys: doc, Options: options.Index().SetUnique(true)}
}

func plain(keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys}
}

// Indexes lists every index the application relies on, per collection.
// Unique ones back the conflict errors raised on duplicate writes.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			unique("email"),
			plain(bson.D{{Key: "resetPasswordToken", Value: 1}}),
			plain(bson.D{{Key: "verificationToken", Value: 1}}),
		},
		RefreshTokensCollection: {
			unique("tokenHash"),
			plain(bson.D{{Key: "userId", Value: 1}}),
		},
		ProductsCollection: {
			unique("sku"),
			unique("slug"),
			plain(bson.D{{Key: "categoryId", Value: 1}, {Key: "isActive", Value: 1}}),
		},
		CategoriesCollection: {
			unique("name"),
			unique("slug"),
		},
		BlogsCollection: {
			unique("title"),
			unique("slug"),
			plain(bson.D{{Key: "status", Value: 1}, {Key: "publishedAt", Value: -1}}),
		},
		CartItemsCollection: {
			unique("userId", "productId"),
		},
		OrdersCollection: {
			plain(bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}),
			plain(bson.D{{Key: "status", Value: 1}}),
		},
		ReviewsCollection: {
			unique("productId", "userId"),
		},
		ReturnsCollection: {
			plain(bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}),
			plain(bson.D{{Key: "status", Value: 1}}),
		},
		RefundsCollection: {
			plain(bson.D{{Key: "returnRequestId", Value: 1}}),
		},
		NotificationsCollection: {
			plain(bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}),
		},
		NewsletterCollection: {
			unique("email"),
		},
	}
}

// EnsureIndexes creates missing indexes. Existing identical indexes are a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for collection, models := range Indexes() {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
