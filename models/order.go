package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type OrderItem struct {
	ProductID bson.ObjectID `bson:"productId" json:"productId"`
	Name      string        `bson:"name" json:"name"`
	SKU       string        `bson:"sku,omitempty" json:"sku,omitempty"`
	UnitPrice float64       `bson:"unitPrice" json:"unitPrice"`
	Quantity  int           `bson:"quantity" json:"quantity"`
	LineTotal float64       `bson:"lineTotal" json:"lineTotal"`
}

type ShippingAddress struct {
	FullName string `bson:"fullName" json:"fullName"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Line1    string `bson:"line1" json:"line1"`
	City     string `bson:"city" json:"city"`
	Country  string `bson:"country" json:"country"`
}

type AdminNote struct {
	ID          bson.ObjectID `bson:"id" json:"id"`
	AuthorID    bson.ObjectID `bson:"authorId" json:"authorId"`
	AuthorEmail string        `bson:"authorEmail" json:"authorEmail"`
	Content     string        `bson:"content" json:"content"`
	Attachment  *Attachment   `bson:"attachment,omitempty" json:"attachment,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
}

type Order struct {
	ID              bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID          bson.ObjectID   `bson:"userId" json:"userId"`
	Items           []OrderItem     `bson:"items" json:"items"`
	Subtotal        float64         `bson:"subtotal" json:"subtotal"`
	Total           float64         `bson:"total" json:"total"`
	ShippingAddress ShippingAddress `bson:"shippingAddress" json:"shippingAddress"`
	Message         string          `bson:"message,omitempty" json:"message,omitempty"`
	Status          OrderStatus     `bson:"status" json:"status"`
	Notes           []AdminNote     `bson:"notes" json:"notes"`
	DeliveredAt     *time.Time      `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updatedAt" json:"updatedAt"`
}
