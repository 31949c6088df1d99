package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/terragrow/storefront/utils"
)

type Category struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string        `bson:"name" json:"name"`
	Slug        string        `bson:"slug" json:"slug"`
	Description string        `bson:"description,omitempty" json:"description,omitempty"`
	IsActive    bool          `bson:"isActive" json:"isActive"`
	ImageURL    string        `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// BeforeSave keeps Slug in sync with Name. Call it before every persist;
// nameChanged is true on create and whenever the name was edited.
func (c *Category) BeforeSave(nameChanged bool) {
	if nameChanged || c.Slug == "" {
		c.Slug = utils.DeriveSlug(c.Name)
	}
}
