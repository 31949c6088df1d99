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

type ProfileService interface {
	Me(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, name *string, farms []models.Farm) (*models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

type UserAdmin interface {
	List(ctx context.Context, role string, page utils.Page) (services.Page[models.User], error)
	Create(ctx context.Context, in dto.CreateUserDTO) (*models.User, error)
	UpdateRole(ctx context.Context, actorID, id, role string) (*models.User, error)
	SetActive(ctx context.Context, actorID, id string, active bool) (*models.User, error)
	Delete(ctx context.Context, actorID, id string) error
	AddAchievement(ctx context.Context, id string, in dto.AchievementDTO) (*models.User, error)
}

func GetMe(svc ProfileService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.Me(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func UpdateMe(svc ProfileService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateProfileDTO
		if !bindJSON(c, log, &body) {
			return
		}
		user, err := svc.UpdateProfile(c.Request.Context(), middleware.UserID(c), body.Name, body.Farms)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func ChangeMyPassword(svc ProfileService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ChangeMyPasswordDTO
		if !bindJSON(c, log, &body) {
			return
		}
		if err := svc.ChangePassword(c.Request.Context(), middleware.UserID(c), body.CurrentPassword, body.NewPassword); err != nil {
			responses.Error(c, log, err)
			return
		}
		responses.OK(c, "password updated")
	}
}

func ListUsers(svc UserAdmin, q config.QueryConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.List(c.Request.Context(), c.Query("role"), page(c, q))
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func CreateUser(svc UserAdmin, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateUserDTO
		if !bindJSON(c, log, &body) {
			return
		}
		user, err := svc.Create(c.Request.Context(), body)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func UpdateUserRole(svc UserAdmin, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateRoleDTO
		if !bindJSON(c, log, &body) {
			return
		}
		user, err := svc.UpdateRole(c.Request.Context(), middleware.UserID(c), c.Param("id"), body.Role)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func SetUserActive(svc UserAdmin, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.SetActiveDTO
		if !bindJSON(c, log, &body) {
			return
		}
		user, err := svc.SetActive(c.Request.Context(), middleware.UserID(c), c.Param("id"), *body.IsActive)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func DeleteUser(svc UserAdmin, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
			responses.Error(c, log, err)
			return
		}
		noContent(c)
	}
}

func AddAchievement(svc UserAdmin, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.AchievementDTO
		if !bindJSON(c, log, &body) {
			return
		}
		user, err := svc.AddAchievement(c.Request.Context(), c.Param("id"), body)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}
