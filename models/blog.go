package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type BlogStatus string

const (
	BlogStatusDraft     BlogStatus = "draft"
	BlogStatusPublished BlogStatus = "published"
	BlogStatusArchived  BlogStatus = "archived"
)

type Blog struct {
	ID            bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title         string          `bson:"title" json:"title"`
	Slug          string          `bson:"slug" json:"slug"`
	Content       string          `bson:"content" json:"content"`
	Excerpt       string          `bson:"excerpt,omitempty" json:"excerpt,omitempty"`
	FeaturedImage string          `bson:"featuredImage,omitempty" json:"featuredImage,omitempty"`
	Categories    []bson.ObjectID `bson:"categories,omitempty" json:"categories,omitempty"`
	Tags          []string        `bson:"tags,omitempty" json:"tags,omitempty"`
	Status        BlogStatus      `bson:"status" json:"status"`
	PublishedAt   *time.Time      `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	AuthorID      bson.ObjectID   `bson:"authorId,omitempty" json:"authorId,omitempty"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time       `bson:"updatedAt" json:"updatedAt"`
}

type NewsletterSubscriber struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string        `bson:"email" json:"email"`
	IsActive       bool          `bson:"isActive" json:"isActive"`
	SubscribedAt   time.Time     `bson:"subscribedAt" json:"subscribedAt"`
	UnsubscribedAt *time.Time    `bson:"unsubscribedAt,omitempty" json:"unsubscribedAt,omitempty"`
}

// SearchResult is one hit of the site search.
type SearchResult struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	URL      string `json:"url"`
	Category string `json:"category"`
}
