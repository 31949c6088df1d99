package services

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/utils"
)

// Page is a slice of results plus the paging metadata the handlers echo back.
type Page[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

func newPage[T any](items []T, p utils.Page, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: p.Page, Limit: p.Limit, Total: total}
}

// sessionUser turns the authenticated user id into an ObjectID. An empty id
// means no session.
func sessionUser(userID string) (bson.ObjectID, error) {
	if strings.TrimSpace(userID) == "" {
		return bson.ObjectID{}, apperrors.New(apperrors.CodeUnauthorized, "authentication required")
	}
	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return bson.ObjectID{}, apperrors.New(apperrors.CodeUnauthorized, "invalid session")
	}
	return id, nil
}

func parseID(raw, field string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return bson.ObjectID{}, apperrors.New(apperrors.CodeValidation, "invalid "+field).
			WithDetails(map[string]any{"field": field})
	}
	return id, nil
}

func validation(field, msg string) error {
	return apperrors.New(apperrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
