package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Unit string

const (
	UnitGram  Unit = "g"
	UnitKilo  Unit = "kg"
	UnitMilli Unit = "ml"
	UnitLitre Unit = "ltr"
	UnitPiece Unit = "unit"
)

var Units = []Unit{UnitGram, UnitKilo, UnitMilli, UnitLitre, UnitPiece}

func (u Unit) Valid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

type Product struct {
	ID             bson.ObjectID     `bson:"_id,omitempty" json:"id"`
	Name           string            `bson:"name" json:"name"`
	Slug           string            `bson:"slug" json:"slug"`
	SKU            string            `bson:"sku" json:"sku"`
	Description    string            `bson:"description,omitempty" json:"description,omitempty"`
	CategoryID     bson.ObjectID     `bson:"categoryId" json:"categoryId"`
	Price          float64           `bson:"price" json:"price"`
	Discount       float64           `bson:"discount" json:"discount"`
	Stock          int               `bson:"stock" json:"stock"`
	Unit           Unit              `bson:"unit" json:"unit"`
	Images         []string          `bson:"images" json:"images"`
	Tags           []string          `bson:"tags,omitempty" json:"tags,omitempty"`
	Specifications map[string]string `bson:"specifications,omitempty" json:"specifications,omitempty"`
	IsActive       bool              `bson:"isActive" json:"isActive"`
	CreatedBy      bson.ObjectID     `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt      time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// ProductSummary is the slim view embedded in carts and wishlists.
type ProductSummary struct {
	ID       bson.ObjectID `bson:"_id" json:"_id"`
	Name     string        `bson:"name" json:"name"`
	Slug     string        `bson:"slug,omitempty" json:"slug,omitempty"`
	Price    float64       `bson:"price" json:"price"`
	Discount float64       `bson:"discount,omitempty" json:"discount,omitempty"`
	Images   []string      `bson:"images" json:"images"`
	Unit     Unit          `bson:"unit,omitempty" json:"unit,omitempty"`
	Stock    int           `bson:"stock,omitempty" json:"stock,omitempty"`
}

// Attachment describes an uploaded object in media storage.
type Attachment struct {
	URL        string    `bson:"url" json:"url"`
	ObjectName string    `bson:"objectName" json:"objectName"`
	MimeType   string    `bson:"mimeType" json:"mimeType"`
	SizeBytes  int64     `bson:"sizeBytes" json:"sizeBytes"`
	FileName   string    `bson:"fileName,omitempty" json:"fileName,omitempty"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

type Review struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID bson.ObjectID `bson:"productId" json:"productId"`
	UserID    bson.ObjectID `bson:"userId" json:"userId"`
	UserName  string        `bson:"userName,omitempty" json:"userName,omitempty"`
	Rating    int           `bson:"rating" json:"rating"`
	Comment   string        `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}
