package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/terragrow/storefront/database"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/utils"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection(database.ReviewsCollection)}
}

// Create fails with a Conflict when the user already reviewed the product.
func (r *ReviewRepository) Create(ctx context.Context, rev *models.Review) error {
	if rev.ID.IsZero() {
		rev.ID = bson.NewObjectID()
	}
	rev.CreatedAt = time.Now().UTC()
	_, err := r.col.InsertOne(ctx, rev)
	return translate(err, "review")
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID bson.ObjectID, page utils.Page) ([]models.Review, int64, error) {
	return findPage[models.Review](ctx, r.col, bson.M{"productId": productID}, page, bson.D{{Key: "createdAt", Value: -1}}, "review")
}

type RefundRepository struct {
	col *mongo.Collection
}

func NewRefundRepository(db *mongo.Database) *RefundRepository {
	return &RefundRepository{col: db.Collection(database.RefundsCollection)}
}

func (r *RefundRepository) Create(ctx context.Context, ref *models.Refund) error {
	if ref.ID.IsZero() {
		ref.ID = bson.NewObjectID()
	}
	ref.CreatedAt = time.Now().UTC()
	_, err := r.col.InsertOne(ctx, ref)
	return translate(err, "refund")
}

func (r *RefundRepository) ListByReturn(ctx context.Context, returnID bson.ObjectID) ([]models.Refund, error) {
	return findAll[models.Refund](ctx, r.col, bson.M{"returnRequestId": returnID}, nil, "refund")
}

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection(database.NotificationsCollection)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = bson.NewObjectID()
	}
	n.CreatedAt = time.Now().UTC()
	_, err := r.col.InsertOne(ctx, n)
	return translate(err, "notification")
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID bson.ObjectID, unreadOnly bool, page utils.Page) ([]models.Notification, int64, error) {
	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["readAt"] = bson.M{"$exists": false}
	}
	return findPage[models.Notification](ctx, r.col, filter, page, bson.D{{Key: "createdAt", Value: -1}}, "notification")
}

// MarkRead only touches notifications owned by userID.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id bson.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"readAt": time.Now().UTC()}},
	)
	if err != nil {
		return translate(err, "notification")
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "notification")
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID bson.ObjectID) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"userId": userID, "readAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"readAt": time.Now().UTC()}},
	)
	if err != nil {
		return 0, translate(err, "notification")
	}
	return res.ModifiedCount, nil
}
