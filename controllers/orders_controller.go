package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terragrow/storefront/config"
	"github.com/terragrow/storefront/dto"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/middleware"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/responses"
	"github.com/terragrow/storefront/services"
	"github.com/terragrow/storefront/utils"
)

type OrderService interface {
	Place(ctx context.Context, userID string, in dto.PlaceOrderDTO) (*models.Order, error)
	ListMine(ctx context.Context, userID string, page utils.Page) (services.Page[models.Order], error)
	GetMine(ctx context.Context, userID, id string) (*models.Order, error)
	List(ctx context.Context, status string, page utils.Page) (services.Page[models.Order], error)
	Get(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Order, error)
	AddNote(ctx context.Context, actor services.Actor, id, content string) (*models.Order, error)
}

func PlaceOrder(svc OrderService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.PlaceOrderDTO
		if !bindJSON(c, log, &body) {
			return
		}
		order, err := svc.Place(c.Request.Context(), middleware.UserID(c), body)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

func GetMyOrders(svc OrderService, q config.QueryConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.ListMine(c.Request.Context(), middleware.UserID(c), page(c, q))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func GetMyOrder(svc OrderService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.GetMine(c.Request.Context(), middleware.UserID(c), c.Param("id"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func GetOrders(svc OrderService, q config.QueryConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.List(c.Request.Context(), c.Query("status"), page(c, q))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func GetOrder(svc OrderService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func UpdateOrderStatus(svc OrderService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateOrderStatusDTO
		if !bindJSON(c, log, &body) {
			return
		}
		order, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func AddOrderNote(svc OrderService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.AddAdminNoteDTO
		if !bindJSON(c, log, &body) {
			return
		}
		order, err := svc.AddNote(c.Request.Context(), actor(c), c.Param("id"), body.Content)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
