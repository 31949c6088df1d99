package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ReturnStatus string

const (
	ReturnStatusNew        ReturnStatus = "NEW"
	ReturnStatusInProgress ReturnStatus = "IN_PROGRESS"
	ReturnStatusApproved   ReturnStatus = "APPROVED"
	ReturnStatusRejected   ReturnStatus = "REJECTED"
	ReturnStatusClosed     ReturnStatus = "CLOSED"
)

var ReturnStatuses = []ReturnStatus{
	ReturnStatusNew,
	ReturnStatusInProgress,
	ReturnStatusApproved,
	ReturnStatusRejected,
	ReturnStatusClosed,
}

func (s ReturnStatus) Valid() bool {
	for _, known := range ReturnStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type ReturnRequest struct {
	ID         bson.ObjectID `bson:"_id" json:"id"`
	OrderID    bson.ObjectID `bson:"orderId" json:"orderId"`
	UserID     bson.ObjectID `bson:"userId" json:"userId"`
	Email      string        `bson:"email" json:"email"`
	Reason     string        `bson:"reason" json:"reason"`
	Details    string        `bson:"details,omitempty" json:"details,omitempty"`
	Attachment *Attachment   `bson:"attachment,omitempty" json:"attachment,omitempty"`
	Status     ReturnStatus  `bson:"status" json:"status"`
	Notes      []AdminNote   `bson:"notes" json:"notes"`
	ResolvedAt *time.Time    `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt" json:"updatedAt"`
}

type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusProcessed RefundStatus = "processed"
	RefundStatusFailed    RefundStatus = "failed"
)

type Refund struct {
	ID              bson.ObjectID `bson:"_id,omitempty" json:"id"`
	ReturnRequestID bson.ObjectID `bson:"returnRequestId" json:"returnRequestId"`
	OrderID         bson.ObjectID `bson:"orderId" json:"orderId"`
	UserID          bson.ObjectID `bson:"userId" json:"userId"`
	Amount          float64       `bson:"amount" json:"amount"`
	Reason          string        `bson:"reason,omitempty" json:"reason,omitempty"`
	Status          RefundStatus  `bson:"status" json:"status"`
	ProcessedAt     *time.Time    `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
	CreatedBy       bson.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
}

type NotificationType string

const (
	NotificationOrderUpdate  NotificationType = "order_update"
	NotificationReturnUpdate NotificationType = "return_update"
	NotificationSystem       NotificationType = "system"
)

type Notification struct {
	ID        bson.ObjectID    `bson:"_id,omitempty" json:"id"`
	UserID    bson.ObjectID    `bson:"userId" json:"userId"`
	Type      NotificationType `bson:"type" json:"type"`
	Title     string           `bson:"title" json:"title"`
	Message   string           `bson:"message" json:"message"`
	Link      string           `bson:"link,omitempty" json:"link,omitempty"`
	ReadAt    *time.Time       `bson:"readAt,omitempty" json:"readAt,omitempty"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
}
