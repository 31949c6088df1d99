package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/terragrow/storefront/apperrors"
)

var dupIndexName = regexp.MustCompile(`index: (\w+?)_-?1`)

// IsDuplicateKey reports a unique index violation (codes 11000/11001).
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 || e.Code == 11001 {
				return true
			}
		}
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == 11000 || e.Code == 11001 {
				return true
			}
		}
	}

	return strings.Contains(err.Error(), "E11000 duplicate key error")
}

// duplicateField extracts the leading key of the violated index, e.g.
// "slug" from "... index: slug_1 dup key ...". For a compound index only
// the first key is reported ("userId" for userId_1_productId_1); callers
// that write compound keys rewrap the conflict with their own field.
func duplicateField(err error) string {
	m := dupIndexName.FindStringSubmatch(err.Error())
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// translate maps driver errors onto typed application errors. what names the
// entity for not found messages.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if apperrors.As(err) != nil {
		return err
	}
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperrors.Wrap(apperrors.CodeNotFound, err, what+" not found")
	case IsDuplicateKey(err):
		field := duplicateField(err)
		if field == "" {
			return apperrors.Wrap(apperrors.CodeConflict, err, what+" already exists")
		}
		return apperrors.Wrap(apperrors.CodeConflict, err, field+" already exists").
			WithDetails(map[string]any{"field": field})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Wrap(apperrors.CodeDependency, err, "database timeout")
	default:
		return apperrors.Wrap(apperrors.CodeDependency, err, "database error")
	}
}
