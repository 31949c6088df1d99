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
	"github.com/terragrow/storefront/repository"
	"github.com/terragrow/storefront/responses"
	"github.com/terragrow/storefront/services"
	"github.com/terragrow/storefront/utils"
)

type ReturnService interface {
	Create(ctx context.Context, userID string, in dto.CreateReturnRequestDTO, photo *multipart.FileHeader) (*models.ReturnRequest, error)
	ListMine(ctx context.Context, userID string, page utils.Page) (services.Page[models.ReturnRequest], error)
	GetMine(ctx context.Context, userID, id string) (*models.ReturnRequest, error)
	List(ctx context.Context, f repository.ReturnFilter, page utils.Page) (services.Page[models.ReturnRequest], error)
	Get(ctx context.Context, id string) (*models.ReturnRequest, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.ReturnRequest, error)
	AddNote(ctx context.Context, actor services.Actor, id, content string, file *multipart.FileHeader) (*models.ReturnRequest, error)
	IssueRefund(ctx context.Context, actor services.Actor, id string, in dto.CreateRefundDTO) (*models.Refund, error)
	ListRefunds(ctx context.Context, id string) ([]models.Refund, error)
}

// CreateReturnRequest takes the request JSON in "data" and an optional photo
// in "file".
// POST /returns
func CreateReturnRequest(svc ReturnService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateReturnRequestDTO
		if !bindData(c, log, &body) {
			return
		}
		req, err := svc.Create(c.Request.Context(), middleware.UserID(c), body, formFile(c, "file"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, req)
	}
}

func GetMyReturnRequests(svc ReturnService, q config.QueryConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.ListMine(c.Request.Context(), middleware.UserID(c), page(c, q))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func GetMyReturnRequest(svc ReturnService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := svc.GetMine(c.Request.Context(), middleware.UserID(c), c.Param("id"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

// GET /admin/returns?status=&email=&q=
func GetReturnRequests(svc ReturnService, q config.QueryConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repository.ReturnFilter{
			Status: strings.TrimSpace(c.Query("status")),
			Email:  strings.TrimSpace(c.Query("email")),
			Query:  strings.TrimSpace(c.Query("q")),
		}
		result, err := svc.List(c.Request.Context(), filter, page(c, q))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func GetReturnRequest(svc ReturnService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

func GetReturnNotes(svc ReturnService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		items(c, http.StatusOK, req.Notes)
	}
}

func UpdateReturnStatus(svc ReturnService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateReturnStatusDTO
		if !bindJSON(c, log, &body) {
			return
		}
		req, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

// AddReturnNote accepts plain JSON, or a multipart form with the note in
// "data" and an attachment in "file". The first note on a NEW request moves
// it to IN_PROGRESS.
func AddReturnNote(svc ReturnService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.AddAdminNoteDTO
		var file *multipart.FileHeader
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			if !bindData(c, log, &body) {
				return
			}
			file = formFile(c, "file")
		} else if !bindJSON(c, log, &body) {
			return
		}

		req, err := svc.AddNote(c.Request.Context(), actor(c), c.Param("id"), body.Content, file)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, req)
	}
}

func IssueRefund(svc ReturnService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateRefundDTO
		if !bindJSON(c, log, &body) {
			return
		}
		refund, err := svc.IssueRefund(c.Request.Context(), actor(c), c.Param("id"), body)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, refund)
	}
}

func GetRefunds(svc ReturnService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		refunds, err := svc.ListRefunds(c.Request.Context(), c.Param("id"))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		items(c, http.StatusOK, refunds)
	}
}
