package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// CartItem is one (user, product) row in the cart_items collection.
type CartItem struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID    bson.ObjectID `bson:"userId" json:"-"`
	ProductID bson.ObjectID `bson:"productId" json:"productId"`
	Quantity  int           `bson:"quantity" json:"quantity"`
	AddedAt   time.Time     `bson:"addedAt" json:"addedAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// CartLine is a cart entry joined with its product, as returned to clients.
type CartLine struct {
	ProductID bson.ObjectID   `bson:"productId" json:"productId"`
	Quantity  int             `bson:"quantity" json:"quantity"`
	Product   *ProductSummary `bson:"product,omitempty" json:"product,omitempty"`
}
