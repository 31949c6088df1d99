package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/terragrow/storefront/database"
	"github.com/terragrow/storefront/models"
)

type RefreshTokenRepository struct {
	col *mongo.Collection
}

func NewRefreshTokenRepository(db *mongo.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{col: db.Collection(database.RefreshTokensCollection)}
}

func (r *RefreshTokenRepository) Insert(ctx context.Context, t *models.RefreshToken) error {
	if t.ID.IsZero() {
		t.ID = bson.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, t)
	return translate(err, "refresh token")
}

// FindActive returns an unrevoked, unexpired token by hash.
func (r *RefreshTokenRepository) FindActive(ctx context.Context, hash string, now time.Time) (*models.RefreshToken, error) {
	return findOne[models.RefreshToken](ctx, r.col, bson.M{
		"tokenHash": hash,
		"revokedAt": bson.M{"$exists": false},
		"expiresAt": bson.M{"$gt": now},
	}, "refresh token")
}

// Revoke marks a token revoked. Only an active token matches, so a token
// cannot be rotated twice.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, id bson.ObjectID, replacedBy *string, now time.Time) error {
	set := bson.M{"revokedAt": now}
	if replacedBy != nil {
		set["replacedBy"] = *replacedBy
	}
	res, err := r.col.UpdateOne(ctx, bson.M{
		"_id":       id,
		"revokedAt": bson.M{"$exists": false},
	}, bson.M{"$set": set})
	if err != nil {
		return translate(err, "refresh token")
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "refresh token")
	}
	return nil
}

func (r *RefreshTokenRepository) RevokeByHash(ctx context.Context, hash string, now time.Time) error {
	_, err := r.col.UpdateOne(ctx, bson.M{
		"tokenHash": hash,
		"revokedAt": bson.M{"$exists": false},
	}, bson.M{"$set": bson.M{"revokedAt": now}})
	return translate(err, "refresh token")
}

func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID bson.ObjectID, now time.Time) error {
	_, err := r.col.UpdateMany(ctx, bson.M{
		"userId":    userID,
		"revokedAt": bson.M{"$exists": false},
	}, bson.M{"$set": bson.M{"revokedAt": now}})
	return translate(err, "refresh token")
}
