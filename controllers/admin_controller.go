package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/config"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/middleware"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/responses"
	"github.com/terragrow/storefront/services"
	"github.com/terragrow/storefront/utils"
)

type NotificationService interface {
	List(ctx context.Context, userID string, unreadOnly bool, page utils.Page) (services.Page[models.Notification], error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type Dashboard interface {
	Stats(ctx context.Context) (*services.Stats, error)
}

func GetNotifications(svc NotificationService, q config.QueryConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		unread, err := boolQuery(c, "unread")
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		result, err := svc.List(c.Request.Context(), middleware.UserID(c), unread, page(c, q))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func MarkNotificationRead(svc NotificationService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.MarkRead(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
			responses.Error(c, log, err)
			return
		}
		noContent(c)
	}
}

func MarkAllNotificationsRead(svc NotificationService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.MarkAllRead(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": n})
	}
}

func GetDashboardStats(svc Dashboard, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.Stats(c.Request.Context())
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// Health answers 200 while the store is reachable and 503 otherwise.
func Health(ping func(context.Context) error, timeout time.Duration, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		if err := ping(ctx); err != nil {
			responses.Error(c, log, apperrors.Wrap(apperrors.CodeDependency, err, "database unavailable"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
