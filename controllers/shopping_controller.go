package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terragrow/storefront/dto"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/middleware"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/responses"
)

type WishlistService interface {
	Get(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, productID string) ([]string, error)
	Remove(ctx context.Context, userID, productID string) ([]string, error)
	Clear(ctx context.Context, userID string) ([]string, error)
	View(ctx context.Context, userID string) ([]models.ProductSummary, error)
}

type CartService interface {
	Get(ctx context.Context, userID string) ([]models.CartLine, error)
	Add(ctx context.Context, userID, productID string, quantity int) ([]models.CartLine, error)
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) ([]models.CartLine, error)
	Remove(ctx context.Context, userID, productID string) ([]models.CartLine, error)
	Clear(ctx context.Context, userID string) ([]models.CartLine, error)
}

// Wishlist

func GetWishlist(svc WishlistService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := svc.Get(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		items(c, http.StatusOK, ids)
	}
}

func ViewWishlist(svc WishlistService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		summaries, err := svc.View(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		items(c, http.StatusOK, summaries)
	}
}

func AddToWishlist(svc WishlistService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.WishlistItemDTO
		if !bindJSON(c, log, &body) {
			return
		}
		ids, err := svc.Add(c.Request.Context(), middleware.UserID(c), body.ProductID)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		items(c, http.StatusOK, ids)
	}
}

func RemoveFromWishlist(svc WishlistService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := svc.Remove(c.Request.Context(), middleware.UserID(c), c.Param("productId"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		items(c, http.StatusOK, ids)
	}
}

func ClearWishlist(svc WishlistService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := svc.Clear(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		items(c, http.StatusOK, ids)
	}
}

// Cart

func GetCart(svc CartService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lines, err := svc.Get(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		items(c, http.StatusOK, lines)
	}
}

func AddToCart(svc CartService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.AddToCartDTO
		if !bindJSON(c, log, &body) {
			return
		}
		lines, err := svc.Add(c.Request.Context(), middleware.UserID(c), body.ProductID, body.Quantity)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		items(c, http.StatusOK, lines)
	}
}

func UpdateCartItem(svc CartService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateCartItemDTO
		if !bindJSON(c, log, &body) {
			return
		}
		lines, err := svc.UpdateQuantity(c.Request.Context(), middleware.UserID(c), c.Param("productId"), body.Quantity)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		items(c, http.StatusOK, lines)
	}
}

func RemoveFromCart(svc CartService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lines, err := svc.Remove(c.Request.Context(), middleware.UserID(c), c.Param("productId"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		items(c, http.StatusOK, lines)
	}
}

func ClearCart(svc CartService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lines, err := svc.Clear(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		items(c, http.StatusOK, lines)
	}
}
