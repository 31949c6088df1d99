package controllers

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"

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

type ProductService interface {
	ListProducts(ctx context.Context, q services.ProductQuery, page utils.Page) (services.Page[models.Product], error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, actorID string, in dto.CreateProductDTO, files []*multipart.FileHeader) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, in dto.UpdateProductDTO, files []*multipart.FileHeader) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type ReviewService interface {
	Create(ctx context.Context, userID, productID string, in dto.CreateReviewDTO) (*models.Review, error)
	List(ctx context.Context, productID string, page utils.Page) (services.Page[models.Review], error)
}

func productQuery(c *gin.Context) services.ProductQuery {
	return services.ProductQuery{
		CategorySlug: strings.TrimSpace(c.Query("category")),
		Query:        c.Query("q"),
		Sort:         strings.TrimSpace(c.Query("sort")),
		Tag:          c.Query("tag"),
		MinPrice:     optionalFloat(c, "minPrice"),
		MaxPrice:     optionalFloat(c, "maxPrice"),
	}
}

// GetProducts lists active products. Unknown category slugs give an empty
// page.
func GetProducts(svc ProductService, q config.QueryConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.ListProducts(c.Request.Context(), productQuery(c), page(c, q))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// AdminGetProducts includes inactive products.
func AdminGetProducts(svc ProductService, q config.QueryConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		pq := productQuery(c)
		pq.IncludeAll = true
		result, err := svc.ListProducts(c.Request.Context(), pq, page(c, q))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func GetProductBySlug(svc ProductService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.GetProductBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func GetProduct(svc ProductService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// AddProduct takes a multipart form: JSON in "data", pictures in "images".
func AddProduct(svc ProductService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateProductDTO
		if !bindData(c, log, &body) {
			return
		}
		p, err := svc.CreateProduct(c.Request.Context(), middleware.UserID(c), body, formFiles(c, "images"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func UpdateProduct(svc ProductService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateProductDTO
		if !bindData(c, log, &body) {
			return
		}
		p, err := svc.UpdateProduct(c.Request.Context(), c.Param("id"), body, formFiles(c, "images"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func DeleteProduct(svc ProductService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
			responses.Error(c, log, err)
			return
		}
		noContent(c)
	}
}

// Review routes hang off /products/:slug, so the product id arrives in the
// slug segment.
func GetReviews(svc ReviewService, q config.QueryConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.List(c.Request.Context(), c.Param("slug"), page(c, q))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func AddReview(svc ReviewService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateReviewDTO
		if !bindJSON(c, log, &body) {
			return
		}
		review, err := svc.Create(c.Request.Context(), middleware.UserID(c), c.Param("slug"), body)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, review)
	}
}
