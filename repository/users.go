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

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(database.UsersCollection)}
}

func (r *UserRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return findOne[models.User](ctx, r.col, bson.M{"_id": id}, "user")
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, r.col, bson.M{"email": utils.NormalizeEmail(email)}, "user")
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	if u.Wishlist == nil {
		u.Wishlist = []bson.ObjectID{}
	}
	now := time.Now().UTC()
	u.Email = utils.NormalizeEmail(u.Email)
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, u)
	return translate(err, "user")
}

func (r *UserRepository) List(ctx context.Context, role string, page utils.Page) ([]models.User, int64, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	return findPage[models.User](ctx, r.col, filter, page, bson.D{{Key: "createdAt", Value: -1}}, "user")
}

func (r *UserRepository) update(ctx context.Context, id bson.ObjectID, update bson.M) error {
	res, err := r.col.UpdateByID(ctx, id, update)
	if err != nil {
		return translate(err, "user")
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "user")
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id bson.ObjectID, hash string) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{
		"passwordHash": hash,
		"updatedAt":    time.Now().UTC(),
	}})
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id bson.ObjectID, name *string, farms []models.Farm) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if name != nil {
		set["name"] = *name
	}
	if farms != nil {
		set["farms"] = farms
	}
	return r.update(ctx, id, bson.M{"$set": set})
}

func (r *UserRepository) UpdateRole(ctx context.Context, id bson.ObjectID, role models.Role) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{
		"role":      role,
		"updatedAt": time.Now().UTC(),
	}})
}

func (r *UserRepository) SetActive(ctx context.Context, id bson.ObjectID, active bool) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{
		"isActive":  active,
		"updatedAt": time.Now().UTC(),
	}})
}

func (r *UserRepository) AddAchievement(ctx context.Context, id bson.ObjectID, a models.Achievement) error {
	return r.update(ctx, id, bson.M{
		"$push": bson.M{"achievements": a},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *UserRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "user")
	}
	if res.DeletedCount == 0 {
		return translate(mongo.ErrNoDocuments, "user")
	}
	return nil
}

// Wishlist

type wishlistDoc struct {
	Wishlist []bson.ObjectID `bson:"wishlist"`
}

func (r *UserRepository) wishlistUpdate(ctx context.Context, userID bson.ObjectID, update bson.M) ([]bson.ObjectID, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"wishlist": 1})

	var doc wishlistDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&doc); err != nil {
		return nil, translate(err, "user")
	}
	if doc.Wishlist == nil {
		return []bson.ObjectID{}, nil
	}
	return doc.Wishlist, nil
}

func (r *UserRepository) WishlistIDs(ctx context.Context, userID bson.ObjectID) ([]bson.ObjectID, error) {
	opts := options.FindOne().SetProjection(bson.M{"wishlist": 1})
	var doc wishlistDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&doc); err != nil {
		return nil, translate(err, "user")
	}
	if doc.Wishlist == nil {
		return []bson.ObjectID{}, nil
	}
	return doc.Wishlist, nil
}

// AddToWishlist is idempotent: $addToSet never stores a second copy.
func (r *UserRepository) AddToWishlist(ctx context.Context, userID, productID bson.ObjectID) ([]bson.ObjectID, error) {
	return r.wishlistUpdate(ctx, userID, wishlistAdd(productID))
}

func (r *UserRepository) RemoveFromWishlist(ctx context.Context, userID, productID bson.ObjectID) ([]bson.ObjectID, error) {
	return r.wishlistUpdate(ctx, userID, wishlistPull(productID))
}

func (r *UserRepository) ClearWishlist(ctx context.Context, userID bson.ObjectID) ([]bson.ObjectID, error) {
	return r.wishlistUpdate(ctx, userID, wishlistClear())
}

func wishlistAdd(productID bson.ObjectID) bson.M {
	return bson.M{"$addToSet": bson.M{"wishlist": productID}}
}

func wishlistPull(productID bson.ObjectID) bson.M {
	return bson.M{"$pull": bson.M{"wishlist": productID}}
}

// wishlistClear stores an empty array, not null, so reads never see a missing field.
func wishlistClear() bson.M {
	return bson.M{"$set": bson.M{"wishlist": bson.A{}}}
}

// Reset and verification tokens

func (r *UserRepository) SetResetToken(ctx context.Context, userID bson.ObjectID, digest string, expiry time.Time) error {
	return r.update(ctx, userID, bson.M{"$set": bson.M{
		"resetPasswordToken":  digest,
		"resetPasswordExpiry": expiry,
		"updatedAt":           time.Now().UTC(),
	}})
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, userID bson.ObjectID, digest string, expiry time.Time) error {
	return r.update(ctx, userID, bson.M{"$set": bson.M{
		"verificationToken":       digest,
		"verificationTokenExpiry": expiry,
		"updatedAt":               time.Now().UTC(),
	}})
}

// ConsumeResetToken sets the new password hash and clears the token in one
// atomic step. An unknown or expired digest yields NotFound.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, digest string, now time.Time, passwordHash string) (*models.User, error) {
	filter, update := resetConsumption(digest, now, passwordHash)
	return r.consume(ctx, filter, update)
}

func (r *UserRepository) ConsumeVerificationToken(ctx context.Context, digest string, now time.Time) (*models.User, error) {
	filter, update := verificationConsumption(digest, now)
	return r.consume(ctx, filter, update)
}

// resetConsumption matches only a live token: an expiry equal to now is
// already expired.
func resetConsumption(digest string, now time.Time, passwordHash string) (filter, update bson.M) {
	filter = bson.M{
		"resetPasswordToken":  digest,
		"resetPasswordExpiry": bson.M{"$gt": now},
	}
	update = bson.M{
		"$set":   bson.M{"passwordHash": passwordHash, "updatedAt": now},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpiry": ""},
	}
	return filter, update
}

func verificationConsumption(digest string, now time.Time) (filter, update bson.M) {
	filter = bson.M{
		"verificationToken":       digest,
		"verificationTokenExpiry": bson.M{"$gt": now},
	}
	update = bson.M{
		"$set":   bson.M{"isVerified": true, "updatedAt": now},
		"$unset": bson.M{"verificationToken": "", "verificationTokenExpiry": ""},
	}
	return filter, update
}

func (r *UserRepository) consume(ctx context.Context, filter, update bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u); err != nil {
		return nil, translate(err, "token")
	}
	return &u, nil
}
