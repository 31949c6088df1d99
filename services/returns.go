package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/dto"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/mailer"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/repository"
	"github.com/terragrow/storefront/storage"
	"github.com/terragrow/storefront/utils"
)

type ReturnService struct {
	returns  ReturnStore
	refunds  RefundStore
	orders   OrderStore
	users    UserStore
	media    storage.Storage
	notifier notifier
	log      *logger.Logger
}

func NewReturnService(returns ReturnStore, refunds RefundStore, orders OrderStore, users UserStore, notifications NotificationStore, media storage.Storage, mail mailer.Mailer, log *logger.Logger) *ReturnService {
	if media == nil {
		media = storage.Disabled{}
	}
	return &ReturnService{
		returns:  returns,
		refunds:  refunds,
		orders:   orders,
		users:    users,
		media:    media,
		notifier: notifier{notifications: notifications, users: users, mail: mail, log: log},
		log:      log,
	}
}

// Create opens a return for a delivered order owned by the user. The photo
// is optional.
func (s *ReturnService) Create(ctx context.Context, userID string, in dto.CreateReturnRequestDTO, photo *multipart.FileHeader) (*models.ReturnRequest, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	oid, err := parseID(in.OrderID, "orderId")
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if order.UserID != uid {
		return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
	}
	if order.Status != models.OrderStatusDelivered {
		return nil, validation("orderId", "only delivered orders can be returned")
	}
	open, err := s.returns.OpenForOrder(ctx, oid)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, apperrors.Conflict("orderId", "a return request is already open for this order")
	}
	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	req := &models.ReturnRequest{
		OrderID: oid,
		UserID:  uid,
		Email:   user.Email,
		Reason:  strings.TrimSpace(in.Reason),
		Details: strings.TrimSpace(in.Details),
		Status:  models.ReturnStatusNew,
	}
	if photo != nil {
		att, err := s.media.Upload(ctx, "returns/"+oid.Hex(), photo)
		if err != nil {
			return nil, err
		}
		req.Attachment = att
	}

	if err := s.returns.Create(ctx, req); err != nil {
		if req.Attachment != nil {
			if delErr := s.media.Delete(ctx, req.Attachment.ObjectName); delErr != nil {
				s.log.Error(ctx, "returns.discard_upload_failed", delErr)
			}
		}
		return nil, err
	}
	return req, nil
}

func (s *ReturnService) ListMine(ctx context.Context, userID string, page utils.Page) (Page[models.ReturnRequest], error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return Page[models.ReturnRequest]{}, err
	}
	return s.List(ctx, repository.ReturnFilter{UserID: &uid}, page)
}

func (s *ReturnService) GetMine(ctx context.Context, userID, id string) (*models.ReturnRequest, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.UserID != uid {
		return nil, apperrors.New(apperrors.CodeNotFound, "return request not found")
	}
	return req, nil
}

func (s *ReturnService) List(ctx context.Context, f repository.ReturnFilter, page utils.Page) (Page[models.ReturnRequest], error) {
	if f.Status != "" && !models.ReturnStatus(f.Status).Valid() {
		return Page[models.ReturnRequest]{}, validation("status", "invalid status")
	}
	f.Email = utils.NormalizeEmail(f.Email)
	items, total, err := s.returns.List(ctx, f, page)
	if err != nil {
		return Page[models.ReturnRequest]{}, err
	}
	return newPage(items, page, total), nil
}

func (s *ReturnService) Get(ctx context.Context, id string) (*models.ReturnRequest, error) {
	rid, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	return s.returns.FindByID(ctx, rid)
}

func (s *ReturnService) UpdateStatus(ctx context.Context, id, status string) (*models.ReturnRequest, error) {
	rid, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	next := models.ReturnStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !next.Valid() {
		return nil, validation("status", "invalid status")
	}
	req, err := s.returns.UpdateStatus(ctx, rid, next)
	if err != nil {
		return nil, err
	}
	s.notifier.notify(ctx, req.UserID, models.NotificationReturnUpdate,
		"Return request update",
		fmt.Sprintf("Your return request is now %s.", strings.ToLower(strings.ReplaceAll(string(next), "_", " "))),
		"/returns/"+req.ID.Hex(),
	)
	return req, nil
}

// AddNote appends a staff note with an optional attachment. The first note
// moves a NEW request to IN_PROGRESS.
func (s *ReturnService) AddNote(ctx context.Context, actor Actor, id, content string, file *multipart.FileHeader) (*models.ReturnRequest, error) {
	rid, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	note, err := adminNote(actor, content, nil)
	if err != nil {
		return nil, err
	}
	if file != nil {
		if note.Attachment, err = s.media.Upload(ctx, "returns/"+rid.Hex()+"/notes", file); err != nil {
			return nil, err
		}
	}
	if err := s.returns.AddNote(ctx, rid, note); err != nil {
		if note.Attachment != nil {
			if delErr := s.media.Delete(ctx, note.Attachment.ObjectName); delErr != nil {
				s.log.Error(ctx, "returns.discard_upload_failed", delErr)
			}
		}
		return nil, err
	}
	return s.returns.FindByID(ctx, rid)
}

// IssueRefund pays back an APPROVED return, up to the order total, and
// closes the return.
func (s *ReturnService) IssueRefund(ctx context.Context, actor Actor, id string, in dto.CreateRefundDTO) (*models.Refund, error) {
	staff, err := sessionUser(actor.ID)
	if err != nil {
		return nil, err
	}
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.ReturnStatusApproved {
		return nil, apperrors.Conflict("status", "return request must be approved before refunding")
	}
	order, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	amount := decimal.NewFromFloat(in.Amount).Round(2)
	if !amount.IsPositive() {
		return nil, validation("amount", "amount must be positive")
	}
	if amount.GreaterThan(decimal.NewFromFloat(order.Total)) {
		return nil, validation("amount", "amount exceeds the order total")
	}

	now := time.Now().UTC()
	refund := &models.Refund{
		ReturnRequestID: req.ID,
		OrderID:         order.ID,
		UserID:          req.UserID,
		Amount:          amount.InexactFloat64(),
		Reason:          strings.TrimSpace(in.Reason),
		Status:          models.RefundStatusProcessed,
		ProcessedAt:     &now,
		CreatedBy:       staff,
	}
	if err := s.refunds.Create(ctx, refund); err != nil {
		return nil, err
	}
	if _, err := s.returns.UpdateStatus(ctx, req.ID, models.ReturnStatusClosed); err != nil {
		s.log.Error(s.log.WithField(ctx, "return_id", req.ID.Hex()), "returns.close_after_refund_failed", err)
	}

	s.notifier.notify(ctx, req.UserID, models.NotificationReturnUpdate,
		"Refund issued",
		fmt.Sprintf("A refund of %s has been issued for your order %s.", amount.StringFixed(2), order.ID.Hex()),
		"/returns/"+req.ID.Hex(),
	)
	return refund, nil
}

func (s *ReturnService) ListRefunds(ctx context.Context, id string) ([]models.Refund, error) {
	rid, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	return s.refunds.ListByReturn(ctx, rid)
}
