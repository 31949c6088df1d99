package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/terragrow/storefront/config"
	"github.com/terragrow/storefront/dto"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/middleware"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/responses"
	"github.com/terragrow/storefront/services"
)

const refreshCookie = "refreshToken"

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Refresh(ctx context.Context, raw string) (*services.Session, error)
	Logout(ctx context.Context, raw string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password, confirm string) error
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
	ResendVerification(ctx context.Context, userID string) error
}

func setRefreshCookie(c *gin.Context, cfg config.CookieConfig, value string, expires time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     refreshCookie,
		Value:    value,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearRefreshCookie(c *gin.Context, cfg config.CookieConfig) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteNoneMode,
	})
}

func Signup(svc AuthService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.SignupDTO
		if !bindJSON(c, log, &body) {
			return
		}
		user, err := svc.Signup(c.Request.Context(), body.Name, body.Email, body.Password)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func Login(svc AuthService, cookies config.CookieConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if !bindJSON(c, log, &body) {
			return
		}
		session, err := svc.Login(c.Request.Context(), body.Email, body.Password)
		if err != nil {
			responses.Error(c, log, err)
			return
		}
		setRefreshCookie(c, cookies, session.RefreshToken, session.RefreshExpires)
		c.JSON(http.StatusOK, session)
	}
}

func Refresh(svc AuthService, cookies config.CookieConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(refreshCookie)
		session, err := svc.Refresh(c.Request.Context(), raw)
		if err != nil {
			clearRefreshCookie(c, cookies)
			responses.Error(c, log, err)
			return
		}
		setRefreshCookie(c, cookies, session.RefreshToken, session.RefreshExpires)
		c.JSON(http.StatusOK, session)
	}
}

// Logout always clears the cookie; revoking is best effort.
func Logout(svc AuthService, cookies config.CookieConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(refreshCookie)
		clearRefreshCookie(c, cookies)
		if err := svc.Logout(c.Request.Context(), raw); err != nil {
			log.Error(c.Request.Context(), "auth.logout_revoke_failed", err)
		}
		responses.OK(c, "logged out")
	}
}

// ForgotPassword answers with the same body whether or not the account
// exists.
func ForgotPassword(svc AuthService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ForgotPasswordDTO
		if !bindJSON(c, log, &body) {
			return
		}
		if err := svc.ForgotPassword(c.Request.Context(), body.Email); err != nil {
			responses.Error(c, log, err)
			return
		}
		responses.OK(c, services.ForgotPasswordMessage)
	}
}

func ResetPassword(svc AuthService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ResetPasswordDTO
		if !bindJSON(c, log, &body) {
			return
		}
		if err := svc.ResetPassword(c.Request.Context(), body.Token, body.Password, body.ConfirmPassword); err != nil {
			responses.Error(c, log, err)
			return
		}
		responses.OK(c, "password updated")
	}
}

func VerifyEmail(svc AuthService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.VerifyEmailDTO
		if !bindJSON(c, log, &body) {
			return
		}
		if _, err := svc.VerifyEmail(c.Request.Context(), body.Token); err != nil {
			responses.Error(c, log, err)
			return
		}
		responses.OK(c, "email verified")
	}
}

func ResendVerification(svc AuthService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.ResendVerification(c.Request.Context(), middleware.UserID(c)); err != nil {
			responses.Error(c, log, err)
			return
		}
		responses.OK(c, "verification email sent")
	}
}
