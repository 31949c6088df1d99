package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/repository"
	"github.com/terragrow/storefront/utils"
)

// The interfaces below are implemented by the repository package. Services
// depend on them so tests can swap in memory fakes.

type UserStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	List(ctx context.Context, role string, page utils.Page) ([]models.User, int64, error)
	UpdatePassword(ctx context.Context, id bson.ObjectID, hash string) error
	UpdateProfile(ctx context.Context, id bson.ObjectID, name *string, farms []models.Farm) error
	UpdateRole(ctx context.Context, id bson.ObjectID, role models.Role) error
	SetActive(ctx context.Context, id bson.ObjectID, active bool) error
	AddAchievement(ctx context.Context, id bson.ObjectID, a models.Achievement) error
	Delete(ctx context.Context, id bson.ObjectID) error
	SetResetToken(ctx context.Context, userID bson.ObjectID, digest string, expiry time.Time) error
	SetVerificationToken(ctx context.Context, userID bson.ObjectID, digest string, expiry time.Time) error
	ConsumeResetToken(ctx context.Context, digest string, now time.Time, passwordHash string) (*models.User, error)
	ConsumeVerificationToken(ctx context.Context, digest string, now time.Time) (*models.User, error)
}

type WishlistStore interface {
	WishlistIDs(ctx context.Context, userID bson.ObjectID) ([]bson.ObjectID, error)
	AddToWishlist(ctx context.Context, userID, productID bson.ObjectID) ([]bson.ObjectID, error)
	RemoveFromWishlist(ctx context.Context, userID, productID bson.ObjectID) ([]bson.ObjectID, error)
	ClearWishlist(ctx context.Context, userID bson.ObjectID) ([]bson.ObjectID, error)
}

type RefreshTokenStore interface {
	Insert(ctx context.Context, t *models.RefreshToken) error
	FindActive(ctx context.Context, hash string, now time.Time) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id bson.ObjectID, replacedBy *string, now time.Time) error
	RevokeByHash(ctx context.Context, hash string, now time.Time) error
	RevokeAllForUser(ctx context.Context, userID bson.ObjectID, now time.Time) error
}

type ProductStore interface {
	List(ctx context.Context, f repository.ProductFilter, page utils.Page) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Save(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id bson.ObjectID) error
	Summaries(ctx context.Context, ids []bson.ObjectID) ([]models.ProductSummary, error)
	DecrementStock(ctx context.Context, id bson.ObjectID, qty int) (bool, error)
	IncrementStock(ctx context.Context, id bson.ObjectID, qty int) error
	Search(ctx context.Context, q string, limit int) ([]models.Product, error)
}

type CategoryStore interface {
	List(ctx context.Context, q string, page utils.Page) ([]models.Category, int64, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Save(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id bson.ObjectID) error
}

type CartStore interface {
	Increment(ctx context.Context, userID, productID bson.ObjectID, qty int) error
	SetQuantity(ctx context.Context, userID, productID bson.ObjectID, qty int) error
	Remove(ctx context.Context, userID, productID bson.ObjectID) error
	Clear(ctx context.Context, userID bson.ObjectID) error
	Snapshot(ctx context.Context, userID bson.ObjectID) ([]models.CartLine, error)
}

type BlogStore interface {
	ListPublished(ctx context.Context) ([]models.Blog, error)
	List(ctx context.Context, status string, page utils.Page) ([]models.Blog, int64, error)
	FindPublishedBySlug(ctx context.Context, slug string) (*models.Blog, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Blog, error)
	TitleExists(ctx context.Context, title string, exclude *bson.ObjectID) (bool, error)
	Create(ctx context.Context, b *models.Blog) error
	Save(ctx context.Context, b *models.Blog) error
	Delete(ctx context.Context, id bson.ObjectID) error
	Search(ctx context.Context, q string, limit int) ([]models.Blog, error)
}

type NewsletterStore interface {
	Subscribe(ctx context.Context, email string) (*models.NewsletterSubscriber, error)
	Unsubscribe(ctx context.Context, email string) error
	List(ctx context.Context, activeOnly bool, page utils.Page) ([]models.NewsletterSubscriber, int64, error)
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID bson.ObjectID, page utils.Page) ([]models.Order, int64, error)
	List(ctx context.Context, status string, page utils.Page) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id bson.ObjectID, from, to models.OrderStatus) (*models.Order, error)
	AddNote(ctx context.Context, id bson.ObjectID, note models.AdminNote) error
}

type ReviewStore interface {
	Create(ctx context.Context, r *models.Review) error
	ListByProduct(ctx context.Context, productID bson.ObjectID, page utils.Page) ([]models.Review, int64, error)
}

type ReturnStore interface {
	Create(ctx context.Context, r *models.ReturnRequest) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.ReturnRequest, error)
	OpenForOrder(ctx context.Context, orderID bson.ObjectID) (bool, error)
	List(ctx context.Context, f repository.ReturnFilter, page utils.Page) ([]models.ReturnRequest, int64, error)
	UpdateStatus(ctx context.Context, id bson.ObjectID, status models.ReturnStatus) (*models.ReturnRequest, error)
	AddNote(ctx context.Context, id bson.ObjectID, note models.AdminNote) error
}

type RefundStore interface {
	Create(ctx context.Context, r *models.Refund) error
	ListByReturn(ctx context.Context, returnID bson.ObjectID) ([]models.Refund, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID bson.ObjectID, unreadOnly bool, page utils.Page) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, userID, id bson.ObjectID) error
	MarkAllRead(ctx context.Context, userID bson.ObjectID) (int64, error)
}

type Counter interface {
	Count(ctx context.Context, collection string, filter bson.M) (int64, error)
}
