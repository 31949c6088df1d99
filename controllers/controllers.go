package controllers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/config"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/middleware"
	"github.com/terragrow/storefront/responses"
	"github.com/terragrow/storefront/services"
	"github.com/terragrow/storefront/utils"
)

// bindJSON decodes and validates the body. On failure it writes a 400 and
// returns false.
func bindJSON(c *gin.Context, log *logger.Logger, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		responses.Error(c, log, bindError(err))
		return false
	}
	return true
}

// bindData decodes the JSON "data" field of a multipart form, then runs the
// binding validators on it.
func bindData(c *gin.Context, log *logger.Logger, dst any) bool {
	raw := c.PostForm("data")
	if raw == "" {
		responses.Error(c, log, apperrors.New(apperrors.CodeValidation, "missing data").
			WithDetails(map[string]any{"field": "data"}))
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		responses.Error(c, log, apperrors.New(apperrors.CodeValidation, "invalid data json").
			WithDetails(map[string]any{"field": "data"}))
		return false
	}
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		responses.Error(c, log, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperrors.New(apperrors.CodeValidation, fe.Field()+" failed on "+fe.Tag()).
			WithDetails(map[string]any{"field": fe.Field()})
	}
	return apperrors.New(apperrors.CodeValidation, "invalid request body")
}

// formFiles returns the files under key, or nil for non-multipart requests.
func formFiles(c *gin.Context, key string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[key]
}

func formFile(c *gin.Context, key string) *multipart.FileHeader {
	fh, err := c.FormFile(key)
	if err != nil {
		return nil
	}
	return fh
}

func page(c *gin.Context, q config.QueryConfig) utils.Page {
	return utils.ParsePage(c, q.DefaultLimit, q.MaxLimit)
}

func actor(c *gin.Context) services.Actor {
	return services.Actor{ID: middleware.UserID(c), Email: middleware.Email(c)}
}

func optionalFloat(c *gin.Context, key string) *float64 {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// boolQuery reads an optional true/false query parameter. Bad values are a
// validation error naming the parameter.
func boolQuery(c *gin.Context, key string) (bool, error) {
	v, err := utils.ParseBoolQuery(c.Query(key))
	if err != nil {
		return false, apperrors.New(apperrors.CodeValidation, key+" must be true or false").
			WithDetails(map[string]any{"field": key})
	}
	return v != nil && *v, nil
}

// items wraps a list the way list endpoints without paging return it.
func items[T any](c *gin.Context, status int, list []T) {
	if list == nil {
		list = []T{}
	}
	c.JSON(status, gin.H{"items": list})
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
