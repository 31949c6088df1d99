package services

import (
	"context"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/models"
)

type CartService struct {
	cart     CartStore
	products ProductStore
}

func NewCartService(cart CartStore, products ProductStore) *CartService {
	return &CartService{cart: cart, products: products}
}

func (s *CartService) Get(ctx context.Context, userID string) ([]models.CartLine, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	return s.cart.Snapshot(ctx, uid)
}

// Add merges quantity into the cart entry for productID and returns the
// whole cart.
func (s *CartService) Add(ctx context.Context, userID, productID string, quantity int) ([]models.CartLine, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	pid, err := parseID(productID, "productId")
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, validation("quantity", "quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
	}

	if err := s.cart.Increment(ctx, uid, pid, quantity); err != nil {
		return nil, err
	}
	return s.cart.Snapshot(ctx, uid)
}

// UpdateQuantity sets the quantity, clamped to at least 1.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) ([]models.CartLine, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	pid, err := parseID(productID, "productId")
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		quantity = 1
	}
	if err := s.cart.SetQuantity(ctx, uid, pid, quantity); err != nil {
		return nil, err
	}
	return s.cart.Snapshot(ctx, uid)
}

func (s *CartService) Remove(ctx context.Context, userID, productID string) ([]models.CartLine, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	pid, err := parseID(productID, "productId")
	if err != nil {
		return nil, err
	}
	if err := s.cart.Remove(ctx, uid, pid); err != nil {
		return nil, err
	}
	return s.cart.Snapshot(ctx, uid)
}

func (s *CartService) Clear(ctx context.Context, userID string) ([]models.CartLine, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	if err := s.cart.Clear(ctx, uid); err != nil {
		return nil, err
	}
	return []models.CartLine{}, nil
}
