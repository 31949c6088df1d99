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

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(database.OrdersCollection)}
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = bson.NewObjectID()
	}
	if o.Notes == nil {
		o.Notes = []models.AdminNote{}
	}
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, o)
	return translate(err, "order")
}

func (r *OrderRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Order, error) {
	return findOne[models.Order](ctx, r.col, bson.M{"_id": id}, "order")
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID bson.ObjectID, page utils.Page) ([]models.Order, int64, error) {
	return findPage[models.Order](ctx, r.col, bson.M{"userId": userID}, page, bson.D{{Key: "createdAt", Value: -1}}, "order")
}

func (r *OrderRepository) List(ctx context.Context, status string, page utils.Page) ([]models.Order, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return findPage[models.Order](ctx, r.col, filter, page, bson.D{{Key: "createdAt", Value: -1}}, "order")
}

// UpdateStatus moves the order from one status to the next. The from
// status is part of the filter, so a concurrent change makes this a
// NotFound instead of a lost update.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id bson.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	now := time.Now().UTC()
	set := bson.M{"status": to, "updatedAt": now}
	if to == models.OrderStatusDelivered {
		set["deliveredAt"] = now
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set}, opts).Decode(&o)
	if err != nil {
		return nil, translate(err, "order")
	}
	return &o, nil
}

func (r *OrderRepository) AddNote(ctx context.Context, id bson.ObjectID, note models.AdminNote) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"notes": note},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return translate(err, "order")
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "order")
	}
	return nil
}
