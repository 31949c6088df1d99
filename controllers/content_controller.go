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

type BlogService interface {
	ListPublished(ctx context.Context) ([]models.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*models.Blog, error)
	List(ctx context.Context, status string, page utils.Page) (services.Page[models.Blog], error)
	Create(ctx context.Context, authorID string, in dto.CreateBlogDTO) (*models.Blog, error)
	Update(ctx context.Context, id string, in dto.UpdateBlogDTO) (*models.Blog, error)
	Delete(ctx context.Context, id string) error
}

type Searcher interface {
	Search(ctx context.Context, q string) []models.SearchResult
}

type NewsletterService interface {
	Subscribe(ctx context.Context, email string) (*models.NewsletterSubscriber, error)
	Unsubscribe(ctx context.Context, email string) error
	List(ctx context.Context, activeOnly bool, page utils.Page) (services.Page[models.NewsletterSubscriber], error)
}

// GetBlogs returns the published posts as a bare array.
func GetBlogs(svc BlogService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blogs, err := svc.ListPublished(c.Request.Context())
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		if blogs == nil {
			blogs = []models.Blog{}
		}
		c.JSON(http.StatusOK, blogs)
	}
}

func GetBlogBySlug(svc BlogService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		blog, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, blog)
	}
}

func AdminGetBlogs(svc BlogService, q config.QueryConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.List(c.Request.Context(), c.Query("status"), page(c, q))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func AddBlog(svc BlogService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateBlogDTO
		if !bindJSON(c, log, &body) {
			return
		}
		blog, err := svc.Create(c.Request.Context(), middleware.UserID(c), body)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, blog)
	}
}

func UpdateBlog(svc BlogService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateBlogDTO
		if !bindJSON(c, log, &body) {
			return
		}
		blog, err := svc.Update(c.Request.Context(), c.Param("id"), body)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, blog)
	}
}

func DeleteBlog(svc BlogService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			responses.Error(c, log, err)
			return
		}
		noContent(c)
	}
}

// Search always answers 200. Failures are logged by the service and come
// back as an empty list.
func Search(svc Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		results := svc.Search(c.Request.Context(), c.Query("q"))
		if results == nil {
			results = []models.SearchResult{}
		}
		c.JSON(http.StatusOK, results)
	}
}

func Subscribe(svc NewsletterService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.NewsletterDTO
		if !bindJSON(c, log, &body) {
			return
		}
		if _, err := svc.Subscribe(c.Request.Context(), body.Email); err != nil {
			responses.Error(c, log, err)
			return
		}
		responses.OK(c, "Subscribed to the newsletter.")
	}
}

func Unsubscribe(svc NewsletterService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.NewsletterDTO
		if !bindJSON(c, log, &body) {
			return
		}
		if err := svc.Unsubscribe(c.Request.Context(), body.Email); err != nil {
			responses.Error(c, log, err)
			return
		}
		responses.OK(c, "If that email was subscribed, it has been removed.")
	}
}

func GetSubscribers(svc NewsletterService, q config.QueryConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		activeOnly, err := boolQuery(c, "active")
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		result, err := svc.List(c.Request.Context(), activeOnly, page(c, q))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
