package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/terragrow/storefront/database"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/utils"
)

type CategoryRepository struct {
	col *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{col: db.Collection(database.CategoriesCollection)}
}

func (r *CategoryRepository) List(ctx context.Context, q string, page utils.Page) ([]models.Category, int64, error) {
	filter := bson.M{}
	if q != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
	}
	return findPage[models.Category](ctx, r.col, filter, page, bson.D{{Key: "name", Value: 1}}, "category")
}

func (r *CategoryRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Category, error) {
	return findOne[models.Category](ctx, r.col, bson.M{"_id": id}, "category")
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return findOne[models.Category](ctx, r.col, bson.M{"slug": slug}, "category")
}

// Create persists c. Callers run c.BeforeSave first.
func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, c)
	return translate(err, "category")
}

func (r *CategoryRepository) Save(ctx context.Context, c *models.Category) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return translate(err, "category")
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "category")
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "category")
	}
	if res.DeletedCount == 0 {
		return translate(mongo.ErrNoDocuments, "category")
	}
	return nil
}
