package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/sync/errgroup"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/database"
	"github.com/terragrow/storefront/dto"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/utils"
)

type NotificationService struct {
	notifications NotificationStore
}

func NewNotificationService(notifications NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page utils.Page) (Page[models.Notification], error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return Page[models.Notification]{}, err
	}
	items, total, err := s.notifications.ListByUser(ctx, uid, unreadOnly, page)
	if err != nil {
		return Page[models.Notification]{}, err
	}
	return newPage(items, page, total), nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	uid, err := sessionUser(userID)
	if err != nil {
		return err
	}
	nid, err := parseID(id, "id")
	if err != nil {
		return err
	}
	return s.notifications.MarkRead(ctx, uid, nid)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return 0, err
	}
	return s.notifications.MarkAllRead(ctx, uid)
}

// Stats is the admin dashboard summary.
type Stats struct {
	Users          int64            `json:"users"`
	Products       int64            `json:"products"`
	ActiveProducts int64            `json:"activeProducts"`
	Orders         map[string]int64 `json:"orders"`
	PendingReturns int64            `json:"pendingReturns"`
	Subscribers    int64            `json:"subscribers"`
}

type DashboardService struct {
	counter Counter
}

func NewDashboardService(counter Counter) *DashboardService {
	return &DashboardService{counter: counter}
}

// Stats runs every count concurrently and fails if any of them fails.
func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	statuses := []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	}
	orderCounts := make([]int64, len(statuses))
	stats := &Stats{Orders: make(map[string]int64, len(statuses))}

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, collection string, filter bson.M) {
		g.Go(func() error {
			n, err := s.counter.Count(gctx, collection, filter)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}

	count(&stats.Users, database.UsersCollection, nil)
	count(&stats.Products, database.ProductsCollection, nil)
	count(&stats.ActiveProducts, database.ProductsCollection, bson.M{"isActive": true})
	count(&stats.Subscribers, database.NewsletterCollection, bson.M{"isActive": true})
	count(&stats.PendingReturns, database.ReturnsCollection, bson.M{
		"status": bson.M{"$in": bson.A{models.ReturnStatusNew, models.ReturnStatusInProgress}},
	})
	for i, st := range statuses {
		count(&orderCounts[i], database.OrdersCollection, bson.M{"status": st})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, st := range statuses {
		stats.Orders[string(st)] = orderCounts[i]
	}
	return stats, nil
}

type UserAdminService struct {
	users UserStore
}

func NewUserAdminService(users UserStore) *UserAdminService {
	return &UserAdminService{users: users}
}

func (s *UserAdminService) List(ctx context.Context, role string, page utils.Page) (Page[models.User], error) {
	if role != "" && !models.Role(role).Valid() {
		return Page[models.User]{}, validation("role", "invalid role")
	}
	items, total, err := s.users.List(ctx, role, page)
	if err != nil {
		return Page[models.User]{}, err
	}
	return newPage(items, page, total), nil
}

// Create adds an already verified account with the given role.
func (s *UserAdminService) Create(ctx context.Context, in dto.CreateUserDTO) (*models.User, error) {
	email := utils.NormalizeEmail(in.Email)
	if !validEmail(email) {
		return nil, validation("email", "invalid email")
	}
	role := models.Role(in.Role)
	if !role.Valid() {
		return nil, validation("role", "invalid role")
	}
	if err := checkPassword("password", in.Password); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to hash password")
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsCode(err, apperrors.CodeConflict) {
			return nil, apperrors.Conflict("email", "email already registered")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserAdminService) UpdateRole(ctx context.Context, actorID, id, role string) (*models.User, error) {
	uid, err := s.target(actorID, id)
	if err != nil {
		return nil, err
	}
	r := models.Role(role)
	if !r.Valid() {
		return nil, validation("role", "invalid role")
	}
	if err := s.users.UpdateRole(ctx, uid, r); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, uid)
}

func (s *UserAdminService) SetActive(ctx context.Context, actorID, id string, active bool) (*models.User, error) {
	uid, err := s.target(actorID, id)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetActive(ctx, uid, active); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, uid)
}

func (s *UserAdminService) Delete(ctx context.Context, actorID, id string) error {
	uid, err := s.target(actorID, id)
	if err != nil {
		return err
	}
	return s.users.Delete(ctx, uid)
}

func (s *UserAdminService) AddAchievement(ctx context.Context, id string, in dto.AchievementDTO) (*models.User, error) {
	uid, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validation("title", "title is required")
	}
	if err := s.users.AddAchievement(ctx, uid, models.Achievement{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		AwardedAt:   nowUTC(),
	}); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, uid)
}

// target parses id and refuses actions an admin would take on their own
// account.
func (s *UserAdminService) target(actorID, id string) (bson.ObjectID, error) {
	uid, err := parseID(id, "id")
	if err != nil {
		return bson.ObjectID{}, err
	}
	if uid.Hex() == actorID {
		return bson.ObjectID{}, apperrors.New(apperrors.CodeForbidden, "you cannot change your own account here")
	}
	return uid, nil
}
