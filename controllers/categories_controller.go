package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terragrow/storefront/config"
	"github.com/terragrow/storefront/dto"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/responses"
	"github.com/terragrow/storefront/services"
	"github.com/terragrow/storefront/utils"
)

type CategoryService interface {
	ListCategories(ctx context.Context, q string, page utils.Page) (services.Page[models.Category], error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	CreateCategory(ctx context.Context, in dto.CreateCategoryDTO) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, in dto.UpdateCategoryDTO) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

func GetCategories(svc CategoryService, q config.QueryConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.ListCategories(c.Request.Context(), c.Query("q"), page(c, q))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func GetCategory(svc CategoryService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, err := svc.GetCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

func GetCategoryBySlug(svc CategoryService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, err := svc.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

func AddCategory(svc CategoryService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateCategoryDTO
		if !bindJSON(c, log, &body) {
			return
		}
		cat, err := svc.CreateCategory(c.Request.Context(), body)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

func UpdateCategory(svc CategoryService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateCategoryDTO
		if !bindJSON(c, log, &body) {
			return
		}
		cat, err := svc.UpdateCategory(c.Request.Context(), c.Param("id"), body)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

func DeleteCategory(svc CategoryService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
			responses.Error(c, log, err)
			return
		}
		noContent(c)
	}
}
