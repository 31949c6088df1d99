package services

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/terragrow/storefront/cache"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/utils"
)

// WishlistView is the cached page that lists wishlist products.
const WishlistView = "/wishlist"

type WishlistService struct {
	users    WishlistStore
	products ProductStore
	views    cache.ViewCache
	log      *logger.Logger
}

func NewWishlistService(users WishlistStore, products ProductStore, views cache.ViewCache, log *logger.Logger) *WishlistService {
	if views == nil {
		views = cache.Disabled{}
	}
	return &WishlistService{users: users, products: products, views: views, log: log}
}

// Get returns the product ids in the user's wishlist, never nil.
func (s *WishlistService) Get(ctx context.Context, userID string) ([]string, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	ids, err := s.users.WishlistIDs(ctx, uid)
	if err != nil {
		return nil, err
	}
	return utils.ObjectIDsToStrings(ids), nil
}

// Add puts productID in the wishlist. Adding twice leaves a single entry.
func (s *WishlistService) Add(ctx context.Context, userID, productID string) ([]string, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	pid, err := parseID(productID, "productId")
	if err != nil {
		return nil, err
	}
	if _, err := s.products.FindByID(ctx, pid); err != nil {
		return nil, err
	}
	return s.apply(ctx, uid, func() ([]bson.ObjectID, error) {
		return s.users.AddToWishlist(ctx, uid, pid)
	})
}

// Remove drops productID. Removing an absent id is not an error.
func (s *WishlistService) Remove(ctx context.Context, userID, productID string) ([]string, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	pid, err := parseID(productID, "productId")
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, uid, func() ([]bson.ObjectID, error) {
		return s.users.RemoveFromWishlist(ctx, uid, pid)
	})
}

func (s *WishlistService) Clear(ctx context.Context, userID string) ([]string, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, uid, func() ([]bson.ObjectID, error) {
		return s.users.ClearWishlist(ctx, uid)
	})
}

// View renders the wishlist as product summaries, served from the view
// cache when possible.
func (s *WishlistService) View(ctx context.Context, userID string) ([]models.ProductSummary, error) {
	uid, err := sessionUser(userID)
	if err != nil {
		return nil, err
	}

	var cached []models.ProductSummary
	hit, err := s.views.Get(ctx, WishlistView, uid.Hex(), &cached)
	if err != nil {
		s.log.Error(ctx, "wishlist.view_cache_read_failed", err)
	}
	if hit {
		return cached, nil
	}

	ids, err := s.users.WishlistIDs(ctx, uid)
	if err != nil {
		return nil, err
	}
	summaries := []models.ProductSummary{}
	if len(ids) > 0 {
		if summaries, err = s.products.Summaries(ctx, ids); err != nil {
			return nil, err
		}
	}

	if err := s.views.Set(ctx, WishlistView, uid.Hex(), summaries); err != nil {
		s.log.Error(ctx, "wishlist.view_cache_write_failed", err)
	}
	return summaries, nil
}

// apply runs a wishlist mutation and drops the cached view. A failed
// invalidation is logged only.
func (s *WishlistService) apply(ctx context.Context, uid bson.ObjectID, mutate func() ([]bson.ObjectID, error)) ([]string, error) {
	ids, err := mutate()
	if err != nil {
		return nil, err
	}
	if err := s.views.Invalidate(ctx, WishlistView, uid.Hex()); err != nil {
		s.log.Error(s.log.WithUserID(ctx, uid.Hex()), "wishlist.view_invalidate_failed", err)
	}
	return utils.ObjectIDsToStrings(ids), nil
}
