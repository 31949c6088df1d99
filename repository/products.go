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

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(database.ProductsCollection)}
}

// ProductFilter narrows the public product listing.
type ProductFilter struct {
	CategoryID *bson.ObjectID
	Query      string
	Sort       string
	IncludeAll bool // admins also see inactive products
	MinPrice   *float64
	MaxPrice   *float64
	Tag        string
}

func (f ProductFilter) toBSON() bson.M {
	filter := bson.M{}
	if !f.IncludeAll {
		filter["isActive"] = true
	}
	if f.CategoryID != nil {
		filter["categoryId"] = *f.CategoryID
	}
	if f.Query != "" {
		escaped := regexp.QuoteMeta(f.Query)
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": escaped, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": escaped, "$options": "i"}},
			bson.M{"tags": bson.M{"$regex": escaped, "$options": "i"}},
		}
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	return filter
}

func productSort(sort string) bson.D {
	switch sort {
	case "price_asc":
		return bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		return bson.D{{Key: "price", Value: -1}}
	case "newest":
		return bson.D{{Key: "createdAt", Value: -1}}
	default:
		return bson.D{{Key: "name", Value: 1}}
	}
}

func (r *ProductRepository) List(ctx context.Context, f ProductFilter, page utils.Page) ([]models.Product, int64, error) {
	return findPage[models.Product](ctx, r.col, f.toBSON(), page, productSort(f.Sort), "product")
}

func (r *ProductRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	return findOne[models.Product](ctx, r.col, bson.M{"_id": id}, "product")
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return findOne[models.Product](ctx, r.col, bson.M{"slug": slug, "isActive": true}, "product")
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, p)
	return translate(err, "product")
}

// Save overwrites the stored product with p.
func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return translate(err, "product")
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "product")
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "product")
	}
	if res.DeletedCount == 0 {
		return translate(mongo.ErrNoDocuments, "product")
	}
	return nil
}

// Summaries returns the slim product views for ids, in no particular order.
func (r *ProductRepository) Summaries(ctx context.Context, ids []bson.ObjectID) ([]models.ProductSummary, error) {
	if len(ids) == 0 {
		return []models.ProductSummary{}, nil
	}
	opts := options.Find().SetProjection(bson.M{
		"name": 1, "slug": 1, "price": 1, "discount": 1, "images": 1, "unit": 1, "stock": 1,
	})
	return findAll[models.ProductSummary](ctx, r.col, bson.M{"_id": bson.M{"$in": ids}}, opts, "product")
}

// DecrementStock takes qty units if at least qty are available. It reports
// false when stock was insufficient.
func (r *ProductRepository) DecrementStock(ctx context.Context, id bson.ObjectID, qty int) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return false, translate(err, "product")
	}
	return res.ModifiedCount == 1, nil
}

func (r *ProductRepository) IncrementStock(ctx context.Context, id bson.ObjectID, qty int) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"stock": qty}})
	return translate(err, "product")
}

// Search matches active products by name or description.
func (r *ProductRepository) Search(ctx context.Context, q string, limit int) ([]models.Product, error) {
	escaped := regexp.QuoteMeta(q)
	filter := bson.M{
		"isActive": true,
		"$or": bson.A{
			bson.M{"name": bson.M{"$regex": escaped, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": escaped, "$options": "i"}},
		},
	}
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "name", Value: 1}})
	return findAll[models.Product](ctx, r.col, filter, opts, "product")
}
