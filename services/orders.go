package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/dto"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/mailer"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/utils"
)

// Actor is the authenticated staff member behind an admin action.
type Actor struct {
	ID    string
	Email string
}

// notifier records in-app notifications and mails the owner. Failures are
// logged and never fail the calling operation.
type notifier struct {
	notifications NotificationStore
	users         UserStore
	mail          mailer.Mailer
	log           *logger.Logger
}

func (n notifier) notify(ctx context.Context, userID bson.ObjectID, kind models.NotificationType, title, message, link string) {
	ctx = n.log.WithUserID(ctx, userID.Hex())
	if err := n.notifications.Create(ctx, &models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Link:    link,
	}); err != nil {
		n.log.Error(ctx, "notification.create_failed", err)
	}

	if n.mail == nil || n.users == nil {
		return
	}
	user, err := n.users.FindByID(ctx, userID)
	if err != nil {
		n.log.Error(ctx, "notification.owner_lookup_failed", err)
		return
	}
	if err := n.mail.Send(ctx, mailer.Message{
		To:       user.Email,
		Subject:  title,
		Template: mailer.TemplateOrderUpdate,
		Data:     mailer.EmailData{Name: user.Name, Message: message},
	}); err != nil {
		n.log.Error(ctx, "notification.mail_failed", err)
	}
}

func adminNote(actor Actor, content string, att *models.Attachment) (models.AdminNote, error) {
	author, err := sessionUser(actor.ID)
	if err != nil {
		return models.AdminNote{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return models.AdminNote{}, validation("content", "content is required")
	}
	return models.AdminNote{
		ID:          bson.NewObjectID(),
		AuthorID:    author,
		AuthorEmail: actor.Email,
		Content:     content,
		Attachment:  att,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

type OrderService struct {
	orders   OrderStore
	cart     CartStore
	products ProductStore
	notifier notifier
	log      *logger.Logger
}

func NewOrderService(orders OrderStore, cart CartStore, products ProductStore, notifications NotificationStore, users UserStore, mail mailer.Mailer, log *logger.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		cart:     cart,
		products: products,
		notifier: notifier{notifications: notifications, users: users, mail: mail, log: log},
		log:      log,
	}
}

var hundred = decimal.NewFromInt(100)

// unitPrice applies the percentage discount, rounded to cents.
func unitPrice(p *models.Product) decimal.Decimal {
	price := decimal.NewFromFloat(p.Price)
	if p.Discount > 0 {
		factor := hundred.Sub(decimal.NewFromFloat(p.Discount)).Div(hundred)
		price = price.Mul(factor)
	}
	return price.Round(2)
}

type reservation struct {
	productID bson.ObjectID
	quantity  int
}

// Place turns the server cart into an order. Stock is reserved line by line
// with a guarded decrement; if any line cannot be reserved, the earlier
// reservations are released and nothing is written.
func (s *OrderService) Place(ctx context.Context, userID string, in dto.PlaceOrderDTO) (*models.Order, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	lines, err := s.cart.Snapshot(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, validation("cart", "cart is empty")
	}

	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if apperrors.IsCode(err, apperrors.CodeNotFound) {
				return nil, apperrors.Conflict("productId", "a product in your cart is no longer available")
			}
			return nil, err
		}
		if !product.IsActive {
			return nil, apperrors.Conflict("productId", product.Name+" is no longer available")
		}
		price := unitPrice(product)
		lineTotal := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			SKU:       product.SKU,
			UnitPrice: price.InexactFloat64(),
			Quantity:  line.Quantity,
			LineTotal: lineTotal.Round(2).InexactFloat64(),
		})
	}

	reserved := make([]reservation, 0, len(items))
	for _, item := range items {
		ok, err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			s.release(ctx, reserved)
			return nil, err
		}
		if !ok {
			s.release(ctx, reserved)
			return nil, apperrors.Conflict("stock", fmt.Sprintf("not enough stock for %s", item.Name))
		}
		reserved = append(reserved, reservation{productID: item.ProductID, quantity: item.Quantity})
	}

	order := &models.Order{
		UserID:   uid,
		Items:    items,
		Subtotal: subtotal.Round(2).InexactFloat64(),
		Total:    subtotal.Round(2).InexactFloat64(),
		ShippingAddress: models.ShippingAddress{
			FullName: in.ShippingAddress.FullName,
			Phone:    in.ShippingAddress.Phone,
			Line1:    in.ShippingAddress.Line1,
			City:     in.ShippingAddress.City,
			Country:  in.ShippingAddress.Country,
		},
		Message: strings.TrimSpace(in.Message),
		Status:  models.OrderStatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.release(ctx, reserved)
		return nil, err
	}

	if err := s.cart.Clear(ctx, uid); err != nil {
		s.log.Error(s.log.WithUserID(ctx, uid.Hex()), "order.cart_clear_failed", err)
	}
	return order, nil
}

func (s *OrderService) release(ctx context.Context, reserved []reservation) {
	for _, r := range reserved {
		if err := s.products.IncrementStock(ctx, r.productID, r.quantity); err != nil {
			s.log.Error(s.log.WithField(ctx, "product_id", r.productID.Hex()), "order.stock_release_failed", err)
		}
	}
}

func (s *OrderService) ListMine(ctx context.Context, userID string, page utils.Page) (Page[models.Order], error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return Page[models.Order]{}, err
	}
	items, total, err := s.orders.ListByUser(ctx, uid, page)
	if err != nil {
		return Page[models.Order]{}, err
	}
	return newPage(items, page, total), nil
}

// GetMine hides other users' orders behind NotFound.
func (s *OrderService) GetMine(ctx context.Context, userID, id string) (*models.Order, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != uid {
		return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	oid, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	return s.orders.FindByID(ctx, oid)
}

func (s *OrderService) List(ctx context.Context, status string, page utils.Page) (Page[models.Order], error) {
	items, total, err := s.orders.List(ctx, status, page)
	if err != nil {
		return Page[models.Order]{}, err
	}
	return newPage(items, page, total), nil
}

// UpdateStatus follows the order transition table. Cancelling puts the
// reserved stock back.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := models.OrderStatus(status)
	if !order.Status.CanTransitionTo(next) {
		return nil, apperrors.Conflict("status", fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	updated, err := s.orders.UpdateStatus(ctx, order.ID, order.Status, next)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.Conflict("status", "order was modified concurrently, reload and retry")
		}
		return nil, err
	}

	if next == models.OrderStatusCancelled {
		reserved := make([]reservation, 0, len(order.Items))
		for _, item := range order.Items {
			reserved = append(reserved, reservation{productID: item.ProductID, quantity: item.Quantity})
		}
		s.release(ctx, reserved)
	}

	s.notifier.notify(ctx, updated.UserID, models.NotificationOrderUpdate,
		"Order update",
		fmt.Sprintf("Your order %s is now %s.", updated.ID.Hex(), updated.Status),
		"/orders/"+updated.ID.Hex(),
	)
	return updated, nil
}

func (s *OrderService) AddNote(ctx context.Context, actor Actor, id, content string) (*models.Order, error) {
	oid, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	note, err := adminNote(actor, content, nil)
	if err != nil {
		return nil, err
	}
	if err := s.orders.AddNote(ctx, oid, note); err != nil {
		return nil, err
	}
	return s.orders.FindByID(ctx, oid)
}

type ReviewService struct {
	reviews  ReviewStore
	products ProductStore
	users    UserStore
}

func NewReviewService(reviews ReviewStore, products ProductStore, users UserStore) *ReviewService {
	return &ReviewService{reviews: reviews, products: products, users: users}
}

// Create allows one review per user and product.
func (s *ReviewService) Create(ctx context.Context, userID, productID string, in dto.CreateReviewDTO) (*models.Review, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	pid, err := parseID(productID, "productId")
	if err != nil {
		return nil, err
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, validation("rating", "rating must be between 1 and 5")
	}
	if _, err := s.products.FindByID(ctx, pid); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		ProductID: pid,
		UserID:    uid,
		UserName:  user.Name,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if apperrors.IsCode(err, apperrors.CodeConflict) {
			return nil, apperrors.Conflict("productId", "you already reviewed this product")
		}
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) List(ctx context.Context, productID string, page utils.Page) (Page[models.Review], error) {
	pid, err := parseID(productID, "productId")
	if err != nil {
		return Page[models.Review]{}, err
	}
	items, total, err := s.reviews.ListByProduct(ctx, pid, page)
	if err != nil {
		return Page[models.Review]{}, err
	}
	return newPage(items, page, total), nil
}
