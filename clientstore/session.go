package clientstore

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/logger"
)

// API is the server side of the cart and wishlist. Every call returns the
// authoritative snapshot after the change.
type API interface {
	Wishlist(ctx context.Context) ([]string, error)
	AddToWishlist(ctx context.Context, productID string) ([]string, error)
	RemoveFromWishlist(ctx context.Context, productID string) ([]string, error)
	ClearWishlist(ctx context.Context) ([]string, error)
	Cart(ctx context.Context) ([]CartEntry, error)
	AddToCart(ctx context.Context, productID string, quantity int) ([]CartEntry, error)
	UpdateCartQuantity(ctx context.Context, productID string, quantity int) ([]CartEntry, error)
	RemoveFromCart(ctx context.Context, productID string) ([]CartEntry, error)
	ClearCart(ctx context.Context) ([]CartEntry, error)
}

// Session holds one shopper's state. Mutations run one at a time; readers
// see the optimistic state while a call is in flight.
type Session struct {
	api API
	log *logger.Logger

	ops   sync.Mutex
	mu    sync.RWMutex
	state State
}

func NewSession(api API, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{api: api, log: log, state: State{Wishlist: []string{}, Cart: []CartEntry{}}}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Session) IsInWishlist(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsInWishlist(productID)
}

func (s *Session) dispatch(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	s.mu.Unlock()
}

// Load replaces the local state with the server's.
func (s *Session) Load(ctx context.Context) error {
	s.ops.Lock()
	defer s.ops.Unlock()

	var (
		wishlist []string
		cart     []CartEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		wishlist, err = s.api.Wishlist(gctx)
		return err
	})
	g.Go(func() (err error) {
		cart, err = s.api.Cart(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.dispatch(Action{Kind: WishlistReplaced, Wishlist: wishlist})
	s.dispatch(Action{Kind: CartReplaced, Cart: cart})
	return nil
}

// mutate applies the optimistic action, then asks the server. On success the
// server snapshot wins; on failure the pre-mutation state is restored.
func (s *Session) mutate(ctx context.Context, optimistic Action, call func(ctx context.Context) (Action, error)) error {
	s.ops.Lock()
	defer s.ops.Unlock()

	s.mu.Lock()
	snapshot := s.state.clone()
	s.state = Reduce(s.state, optimistic)
	s.mu.Unlock()

	reconcile, err := call(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
		s.log.Warn(s.log.WithField(ctx, "error", err.Error()), "clientstore.rollback")
		return err
	}
	s.dispatch(reconcile)
	return nil
}

// ToggleWishlist adds the product when absent and removes it otherwise.
func (s *Session) ToggleWishlist(ctx context.Context, productID string) error {
	return s.mutate(ctx, Action{Kind: WishlistToggled, ProductID: productID}, func(ctx context.Context) (Action, error) {
		var (
			ids []string
			err error
		)
		// membership was flipped optimistically
		if s.IsInWishlist(productID) {
			ids, err = s.api.AddToWishlist(ctx, productID)
		} else {
			ids, err = s.api.RemoveFromWishlist(ctx, productID)
		}
		return Action{Kind: WishlistReplaced, Wishlist: ids}, err
	})
}

func (s *Session) ClearWishlist(ctx context.Context) error {
	return s.mutate(ctx, Action{Kind: WishlistReplaced, Wishlist: []string{}}, func(ctx context.Context) (Action, error) {
		ids, err := s.api.ClearWishlist(ctx)
		return Action{Kind: WishlistReplaced, Wishlist: ids}, err
	})
}

func (s *Session) AddToCart(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return apperrors.New(apperrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"field": "quantity"})
	}
	return s.mutate(ctx, Action{Kind: CartAdded, ProductID: productID, Quantity: quantity}, func(ctx context.Context) (Action, error) {
		cart, err := s.api.AddToCart(ctx, productID, quantity)
		return Action{Kind: CartReplaced, Cart: cart}, err
	})
}

// UpdateCartQuantity clamps quantities below 1 to 1.
func (s *Session) UpdateCartQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	return s.mutate(ctx, Action{Kind: CartQuantitySet, ProductID: productID, Quantity: quantity}, func(ctx context.Context) (Action, error) {
		cart, err := s.api.UpdateCartQuantity(ctx, productID, quantity)
		return Action{Kind: CartReplaced, Cart: cart}, err
	})
}

func (s *Session) RemoveFromCart(ctx context.Context, productID string) error {
	return s.mutate(ctx, Action{Kind: CartRemoved, ProductID: productID}, func(ctx context.Context) (Action, error) {
		cart, err := s.api.RemoveFromCart(ctx, productID)
		return Action{Kind: CartReplaced, Cart: cart}, err
	})
}

func (s *Session) ClearCart(ctx context.Context) error {
	return s.mutate(ctx, Action{Kind: CartCleared}, func(ctx context.Context) (Action, error) {
		cart, err := s.api.ClearCart(ctx)
		return Action{Kind: CartReplaced, Cart: cart}, err
	})
}
