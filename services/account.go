package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/cache"
	"github.com/terragrow/storefront/config"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/mailer"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/utils"
)

const (
	minPasswordLength = 8

	// ForgotPasswordMessage is returned whether or not the email is known.
	ForgotPasswordMessage = "If an account exists for that email, a reset link has been sent."
)

var validate = validator.New()

// Session is what a successful login or refresh hands to the client.
type Session struct {
	AccessToken    string       `json:"accessToken"`
	RefreshToken   string       `json:"-"`
	RefreshExpires time.Time    `json:"-"`
	User           *models.User `json:"user"`
}

type AccountService struct {
	users   UserStore
	tokens  RefreshTokenStore
	mail    mailer.Mailer
	limiter cache.RateLimiter
	cfg     *config.Config
	log     *logger.Logger
	now     func() time.Time
}

func NewAccountService(users UserStore, tokens RefreshTokenStore, mail mailer.Mailer, limiter cache.RateLimiter, cfg *config.Config, log *logger.Logger) *AccountService {
	if limiter == nil {
		limiter = cache.Disabled{}
	}
	return &AccountService{
		users:   users,
		tokens:  tokens,
		mail:    mail,
		limiter: limiter,
		cfg:     cfg,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

func checkPassword(field, password string) error {
	if len(password) < minPasswordLength {
		return validation(field, "password must be at least 8 characters")
	}
	return nil
}

func (s *AccountService) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = utils.NormalizeEmail(email)
	if name == "" {
		return nil, validation("name", "name is required")
	}
	if !validEmail(email) {
		return nil, validation("email", "invalid email")
	}
	if err := checkPassword("password", password); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to hash password")
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsCode(err, apperrors.CodeConflict) {
			return nil, apperrors.Conflict("email", "email already registered")
		}
		return nil, err
	}

	if err := s.sendVerification(ctx, user); err != nil {
		s.log.Error(s.log.WithUserID(ctx, user.ID.Hex()), "account.verification_mail_failed", err)
	}
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}
	if err := utils.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid credentials")
	}
	if !user.IsActive {
		return nil, apperrors.New(apperrors.CodeForbidden, "account is disabled")
	}
	return s.issueSession(ctx, user, nil)
}

// Refresh rotates the refresh token: the presented one is revoked and
// replaced. A token that was already rotated is rejected.
func (s *AccountService) Refresh(ctx context.Context, raw string) (*Session, error) {
	if raw == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "missing refresh token")
	}
	claims, err := utils.ValidateToken(raw, s.cfg.JWT.RefreshSecret)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid refresh token")
	}
	stored, err := s.tokens.FindActive(ctx, utils.DigestToken(raw), s.now())
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, err
	}
	if stored.UserID.Hex() != claims.UserID {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.New(apperrors.CodeForbidden, "account is disabled")
	}
	return s.issueSession(ctx, user, stored)
}

// Logout revokes the presented refresh token. Unknown tokens are ignored.
func (s *AccountService) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	return s.tokens.RevokeByHash(ctx, utils.DigestToken(raw), s.now())
}

func (s *AccountService) issueSession(ctx context.Context, user *models.User, previous *models.RefreshToken) (*Session, error) {
	access, err := utils.GenerateAccessToken(user.ID.Hex(), user.Email, string(user.Role), s.cfg.JWT.Secret, s.cfg.JWT.AccessTTL())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to sign access token")
	}
	refresh, err := utils.GenerateRefreshToken(user.ID.Hex(), s.cfg.JWT.RefreshSecret, s.cfg.JWT.RefreshTTL())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to sign refresh token")
	}
	hash := utils.DigestToken(refresh)
	now := s.now()

	if previous != nil {
		if err := s.tokens.Revoke(ctx, previous.ID, &hash, now); err != nil {
			if apperrors.IsCode(err, apperrors.CodeNotFound) {
				return nil, apperrors.New(apperrors.CodeUnauthorized, "refresh token already used")
			}
			return nil, err
		}
	}

	expires := now.Add(s.cfg.JWT.RefreshTTL())
	if err := s.tokens.Insert(ctx, &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: expires,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:    access,
		RefreshToken:   refresh,
		RefreshExpires: expires,
		User:           user,
	}, nil
}

func (s *AccountService) Me(ctx context.Context, userID string) (*models.User, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, uid)
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, name *string, farms []models.Farm) (*models.User, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, validation("name", "name cannot be empty")
		}
		name = &trimmed
	}
	if err := s.users.UpdateProfile(ctx, uid, name, farms); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, uid)
}

// ChangePassword requires the current password and signs the user out of
// every other session.
func (s *AccountService) ChangePassword(ctx context.Context, userID, current, next string) error {
	uid, err := sessionUser(userID)
	if err != nil {
		return err
	}
	if err := checkPassword("newPassword", next); err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return err
	}
	if err := utils.CheckPassword(user.PasswordHash, current); err != nil {
		return apperrors.New(apperrors.CodeUnauthorized, "current password is incorrect")
	}
	hash, err := utils.HashPassword(next)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, uid, hash); err != nil {
		return err
	}
	return s.tokens.RevokeAllForUser(ctx, uid, s.now())
}

// ForgotPassword issues a reset token when the email belongs to a user.
// Known and unknown emails produce the same result so the endpoint cannot be
// used to probe for accounts.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)
	if !validEmail(email) {
		return validation("email", "invalid email")
	}

	allowed, err := s.limiter.Allow(ctx, "forgot_password:"+email, s.cfg.RateLimit.ForgotPasswordLimit, s.cfg.RateLimit.ForgotPasswordWindow)
	if err != nil {
		s.log.Error(ctx, "account.rate_limit_unavailable", err)
	} else if !allowed {
		return apperrors.New(apperrors.CodeRateLimit, "too many reset requests, try again later")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil
		}
		return apperrors.Wrap(apperrors.CodeInternal, err, "could not process request")
	}

	raw, digest, err := utils.NewOpaqueToken()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "could not process request")
	}
	if err := s.users.SetResetToken(ctx, user.ID, digest, s.now().Add(s.cfg.Tokens.ResetTTL)); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "could not process request")
	}

	err = s.mail.Send(ctx, mailer.Message{
		To:       user.Email,
		Subject:  "Reset your password",
		Template: mailer.TemplateResetPassword,
		Data: mailer.EmailData{
			Name: user.Name,
			Link: s.link("/reset-password", raw),
		},
	})
	if err != nil {
		s.log.Error(s.log.WithUserID(ctx, user.ID.Hex()), "account.reset_mail_failed", err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password in one
// atomic store update.
func (s *AccountService) ResetPassword(ctx context.Context, token, password, confirm string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return validation("token", "token is required")
	}
	if password != confirm {
		return validation("confirmpassword", "passwords do not match")
	}
	if err := checkPassword("password", password); err != nil {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to hash password")
	}

	user, err := s.users.ConsumeResetToken(ctx, utils.DigestToken(token), s.now(), hash)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return apperrors.New(apperrors.CodeInvalidToken, "invalid or expired token")
		}
		return err
	}

	if err := s.tokens.RevokeAllForUser(ctx, user.ID, s.now()); err != nil {
		s.log.Error(s.log.WithUserID(ctx, user.ID.Hex()), "account.revoke_sessions_failed", err)
	}
	return nil
}

func (s *AccountService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, validation("token", "token is required")
	}
	user, err := s.users.ConsumeVerificationToken(ctx, utils.DigestToken(token), s.now())
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.New(apperrors.CodeInvalidToken, "invalid or expired token")
		}
		return nil, err
	}
	return user, nil
}

// ResendVerification issues a fresh verification token. Verified users are
// left alone.
func (s *AccountService) ResendVerification(ctx context.Context, userID string) error {
	uid, err := sessionUser(userID)
	if err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return nil
	}
	return s.sendVerification(ctx, user)
}

func (s *AccountService) sendVerification(ctx context.Context, user *models.User) error {
	raw, digest, err := utils.NewOpaqueToken()
	if err != nil {
		return err
	}
	if err := s.users.SetVerificationToken(ctx, user.ID, digest, s.now().Add(s.cfg.Tokens.VerificationTTL)); err != nil {
		return err
	}
	return s.mail.Send(ctx, mailer.Message{
		To:       user.Email,
		Subject:  "Confirm your email",
		Template: mailer.TemplateVerifyEmail,
		Data: mailer.EmailData{
			Name: user.Name,
			Link: s.link("/verify-email", raw),
		},
	})
}

func (s *AccountService) link(path, token string) string {
	base := strings.TrimRight(s.cfg.App.FrontendURL, "/")
	return base + path + "?token=" + url.QueryEscape(token)
}
