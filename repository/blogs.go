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

type BlogRepository struct {
	col *mongo.Collection
}

func NewBlogRepository(db *mongo.Database) *BlogRepository {
	return &BlogRepository{col: db.Collection(database.BlogsCollection)}
}

// ListPublished returns every published post, newest first.
func (r *BlogRepository) ListPublished(ctx context.Context) ([]models.Blog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}, {Key: "createdAt", Value: -1}})
	return findAll[models.Blog](ctx, r.col, bson.M{"status": models.BlogStatusPublished}, opts, "blog")
}

// List is the admin listing across all statuses.
func (r *BlogRepository) List(ctx context.Context, status string, page utils.Page) ([]models.Blog, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return findPage[models.Blog](ctx, r.col, filter, page, bson.D{{Key: "createdAt", Value: -1}}, "blog")
}

// FindPublishedBySlug yields NotFound for unknown slugs and for posts that
// are not published.
func (r *BlogRepository) FindPublishedBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	return findOne[models.Blog](ctx, r.col, bson.M{"slug": slug, "status": models.BlogStatusPublished}, "blog")
}

func (r *BlogRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Blog, error) {
	return findOne[models.Blog](ctx, r.col, bson.M{"_id": id}, "blog")
}

func (r *BlogRepository) TitleExists(ctx context.Context, title string, exclude *bson.ObjectID) (bool, error) {
	filter := bson.M{"title": title}
	if exclude != nil {
		filter["_id"] = bson.M{"$ne": *exclude}
	}
	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, "blog")
	}
	return n > 0, nil
}

func (r *BlogRepository) Create(ctx context.Context, b *models.Blog) error {
	if b.ID.IsZero() {
		b.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, b)
	return translate(err, "blog")
}

func (r *BlogRepository) Save(ctx context.Context, b *models.Blog) error {
	b.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return translate(err, "blog")
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "blog")
	}
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "blog")
	}
	if res.DeletedCount == 0 {
		return translate(mongo.ErrNoDocuments, "blog")
	}
	return nil
}

func (r *BlogRepository) Search(ctx context.Context, q string, limit int) ([]models.Blog, error) {
	escaped := regexp.QuoteMeta(q)
	filter := bson.M{
		"status": models.BlogStatusPublished,
		"$or": bson.A{
			bson.M{"title": bson.M{"$regex": escaped, "$options": "i"}},
			bson.M{"content": bson.M{"$regex": escaped, "$options": "i"}},
			bson.M{"tags": bson.M{"$regex": escaped, "$options": "i"}},
		},
	}
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	return findAll[models.Blog](ctx, r.col, filter, opts, "blog")
}
