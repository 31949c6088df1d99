package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/terragrow/storefront/database"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/utils"
)

type ReturnRepository struct {
	col *mongo.Collection
}

func NewReturnRepository(db *mongo.Database) *ReturnRepository {
	return &ReturnRepository{col: db.Collection(database.ReturnsCollection)}
}

// ReturnFilter drives the admin listing.
type ReturnFilter struct {
	Status string
	Email  string
	Query  string
	UserID *bson.ObjectID
}

func (f ReturnFilter) toBSON() bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Email != "" {
		filter["email"] = f.Email
	}
	if f.UserID != nil {
		filter["userId"] = *f.UserID
	}
	if f.Query != "" {
		escaped := regexp.QuoteMeta(f.Query)
		filter["$or"] = bson.A{
			bson.M{"email": bson.M{"$regex": escaped, "$options": "i"}},
			bson.M{"reason": bson.M{"$regex": escaped, "$options": "i"}},
			bson.M{"details": bson.M{"$regex": escaped, "$options": "i"}},
		}
	}
	return filter
}

func (r *ReturnRepository) Create(ctx context.Context, req *models.ReturnRequest) error {
	if req.ID.IsZero() {
		req.ID = bson.NewObjectID()
	}
	if req.Notes == nil {
		req.Notes = []models.AdminNote{}
	}
	now := time.Now().UTC()
	req.CreatedAt, req.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, req)
	return translate(err, "return request")
}

func (r *ReturnRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.ReturnRequest, error) {
	return findOne[models.ReturnRequest](ctx, r.col, bson.M{"_id": id}, "return request")
}

// OpenForOrder reports whether a non-final request already exists for the order.
func (r *ReturnRepository) OpenForOrder(ctx context.Context, orderID bson.ObjectID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{
		"orderId": orderID,
		"status":  bson.M{"$nin": bson.A{models.ReturnStatusRejected, models.ReturnStatusClosed}},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, "return request")
	}
	return n > 0, nil
}

func (r *ReturnRepository) List(ctx context.Context, f ReturnFilter, page utils.Page) ([]models.ReturnRequest, int64, error) {
	return findPage[models.ReturnRequest](ctx, r.col, f.toBSON(), page, bson.D{{Key: "createdAt", Value: -1}}, "return request")
}

func (r *ReturnRepository) UpdateStatus(ctx context.Context, id bson.ObjectID, status models.ReturnStatus) (*models.ReturnRequest, error) {
	now := time.Now().UTC()
	set := bson.M{"status": status, "updatedAt": now}
	switch status {
	case models.ReturnStatusApproved, models.ReturnStatusRejected, models.ReturnStatusClosed:
		set["resolvedAt"] = now
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var req models.ReturnRequest
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&req); err != nil {
		return nil, translate(err, "return request")
	}
	return &req, nil
}

// AddNote appends an admin note. The first note on a NEW request moves it
// to IN_PROGRESS.
func (r *ReturnRepository) AddNote(ctx context.Context, id bson.ObjectID, note models.AdminNote) error {
	now := time.Now().UTC()
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.ReturnStatusNew},
		bson.M{
			"$push": bson.M{"notes": note},
			"$set": bson.M{
				"status":    models.ReturnStatusInProgress,
				"updatedAt": now,
			},
		},
	)
	if err != nil {
		return translate(err, "return request")
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// if not NEW, just push note + updatedAt
	res, err = r.col.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"notes": note},
		"$set":  bson.M{"updatedAt": now},
	})
	if err != nil {
		return translate(err, "return request")
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "return request")
	}
	return nil
}
