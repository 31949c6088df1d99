package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/terragrow/storefront/database"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/utils"
)

type NewsletterRepository struct {
	col *mongo.Collection
}

func NewNewsletterRepository(db *mongo.Database) *NewsletterRepository {
	return &NewsletterRepository{col: db.Collection(database.NewsletterCollection)}
}

// Subscribe finds or creates the subscriber and (re)activates it.
func (r *NewsletterRepository) Subscribe(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	now := time.Now().UTC()
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var sub models.NewsletterSubscriber
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"email": utils.NormalizeEmail(email)},
		bson.M{
			"$set":   bson.M{"isActive": true, "subscribedAt": now},
			"$unset": bson.M{"unsubscribedAt": ""},
		},
		opts,
	).Decode(&sub)
	if err != nil {
		return nil, translate(err, "subscriber")
	}
	return &sub, nil
}

// Unsubscribe deactivates the subscriber. Unknown emails are not an error.
func (r *NewsletterRepository) Unsubscribe(ctx context.Context, email string) error {
	now := time.Now().UTC()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"email": utils.NormalizeEmail(email), "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "unsubscribedAt": now}},
	)
	return translate(err, "subscriber")
}

func (r *NewsletterRepository) List(ctx context.Context, activeOnly bool, page utils.Page) ([]models.NewsletterSubscriber, int64, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	return findPage[models.NewsletterSubscriber](ctx, r.col, filter, page, bson.D{{Key: "subscribedAt", Value: -1}}, "subscriber")
}
