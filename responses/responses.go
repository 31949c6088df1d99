package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/logger"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Message is the shape of endpoints that only report an outcome.
type Message struct {
	Message string `json:"message"`
}

// Error maps err to its status and public message and aborts the chain.
// Server-side failures are logged with the full cause.
func Error(c *gin.Context, log *logger.Logger, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := apperrors.As(err)
	if typed == nil {
		typed = apperrors.Wrap(apperrors.CodeInternal, err, "unexpected error")
	}
	meta := apperrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case apperrors.CodeValidation,
		apperrors.CodeUnauthorized,
		apperrors.CodeForbidden,
		apperrors.CodeNotFound,
		apperrors.CodeConflict,
		apperrors.CodeRateLimit:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	body := ErrorBody{Error: msg, Code: string(typed.Code())}
	if meta.DetailsAllowed {
		body.Details = typed.Details()
	}

	if log != nil && meta.HTTPStatus >= http.StatusInternalServerError {
		ctx := log.WithFields(c.Request.Context(), map[string]any{
			"error_code": string(typed.Code()),
			"status":     meta.HTTPStatus,
		})
		log.Error(ctx, "request.error", err)
	}

	c.AbortWithStatusJSON(meta.HTTPStatus, body)
}

// OK writes a message-only success body.
func OK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Message{Message: message})
}
