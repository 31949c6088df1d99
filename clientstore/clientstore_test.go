package clientstore

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terragrow/storefront/apperrors"
)

var errOffline = errors.New("offline")

// fakeServer behaves like the storefront endpoints: set semantics for the
// wishlist and $inc semantics for the cart.
type fakeServer struct {
	mu       sync.Mutex
	wishlist []string
	cart     []CartEntry
	fail     bool
	calls    int
}

func (f *fakeServer) begin() error {
	f.calls++
	if f.fail {
		return errOffline
	}
	return nil
}

func (f *fakeServer) ids() []string { return append([]string{}, f.wishlist...) }

func (f *fakeServer) lines() []CartEntry { return append([]CartEntry{}, f.cart...) }

func (f *fakeServer) Wishlist(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	return f.ids(), nil
}

func (f *fakeServer) AddToWishlist(_ context.Context, id string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	for _, have := range f.wishlist {
		if have == id {
			return f.ids(), nil
		}
	}
	f.wishlist = append(f.wishlist, id)
	return f.ids(), nil
}

func (f *fakeServer) RemoveFromWishlist(_ context.Context, id string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	f.wishlist = without(f.wishlist, id)
	return f.ids(), nil
}

func (f *fakeServer) ClearWishlist(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	f.wishlist = nil
	return []string{}, nil
}

func (f *fakeServer) Cart(context.Context) ([]CartEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	return f.lines(), nil
}

func (f *fakeServer) AddToCart(_ context.Context, id string, qty int) ([]CartEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	for i := range f.cart {
		if f.cart[i].ProductID == id {
			f.cart[i].Quantity += qty
			return f.lines(), nil
		}
	}
	f.cart = append(f.cart, CartEntry{ProductID: id, Quantity: qty})
	return f.lines(), nil
}

func (f *fakeServer) UpdateCartQuantity(_ context.Context, id string, qty int) ([]CartEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	if qty < 1 {
		qty = 1
	}
	for i := range f.cart {
		if f.cart[i].ProductID == id {
			f.cart[i].Quantity = qty
		}
	}
	return f.lines(), nil
}

func (f *fakeServer) RemoveFromCart(_ context.Context, id string) ([]CartEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	kept := []CartEntry{}
	for _, e := range f.cart {
		if e.ProductID != id {
			kept = append(kept, e)
		}
	}
	f.cart = kept
	return f.lines(), nil
}

func (f *fakeServer) ClearCart(context.Context) ([]CartEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	f.cart = nil
	return []CartEntry{}, nil
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	in := State{Wishlist: []string{"a", "b"}, Cart: []CartEntry{{ProductID: "a", Quantity: 1}}}

	Reduce(in, Action{Kind: WishlistToggled, ProductID: "a"})
	Reduce(in, Action{Kind: CartAdded, ProductID: "a", Quantity: 4})
	Reduce(in, Action{Kind: CartRemoved, ProductID: "a"})

	assert.Equal(t, []string{"a", "b"}, in.Wishlist)
	assert.Equal(t, []CartEntry{{ProductID: "a", Quantity: 1}}, in.Cart)
}

func TestReduceCart(t *testing.T) {
	s := State{}
	s = Reduce(s, Action{Kind: CartAdded, ProductID: "p", Quantity: 2})
	s = Reduce(s, Action{Kind: CartAdded, ProductID: "p", Quantity: 3})
	require.Len(t, s.Cart, 1)
	assert.Equal(t, 5, s.Quantity("p"))

	s = Reduce(s, Action{Kind: CartQuantitySet, ProductID: "p", Quantity: -5})
	assert.Equal(t, 1, s.Quantity("p"))

	s = Reduce(s, Action{Kind: CartReplaced, Cart: []CartEntry{{ProductID: "x", Quantity: 2}, {ProductID: "x", Quantity: 7}}})
	assert.Equal(t, []CartEntry{{ProductID: "x", Quantity: 7}}, s.Cart)

	s = Reduce(s, Action{Kind: CartCleared})
	assert.Empty(t, s.Cart)
	assert.Equal(t, 0, s.Quantity("x"))
}

func TestToggleConvergesWithServer(t *testing.T) {
	server := &fakeServer{}
	s := NewSession(server, nil)
	ctx := context.Background()

	require.NoError(t, s.ToggleWishlist(ctx, "p1"))
	assert.True(t, s.IsInWishlist("p1"))
	require.NoError(t, s.ToggleWishlist(ctx, "p1"))
	assert.False(t, s.IsInWishlist("p1"))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		require.NoError(t, s.ToggleWishlist(ctx, fmt.Sprintf("p%d", rng.Intn(5))))
		assert.ElementsMatch(t, server.ids(), s.State().Wishlist)
	}
}

func TestServerSnapshotWins(t *testing.T) {
	server := &fakeServer{wishlist: []string{"from-other-device"}, cart: []CartEntry{{ProductID: "q", Quantity: 4}}}
	s := NewSession(server, nil)
	ctx := context.Background()

	require.NoError(t, s.ToggleWishlist(ctx, "p1"))
	assert.ElementsMatch(t, []string{"from-other-device", "p1"}, s.State().Wishlist)

	require.NoError(t, s.AddToCart(ctx, "p", 2))
	require.NoError(t, s.AddToCart(ctx, "p", 3))
	assert.Equal(t, []CartEntry{{ProductID: "q", Quantity: 4}, {ProductID: "p", Quantity: 5}}, s.State().Cart)

	require.NoError(t, s.UpdateCartQuantity(ctx, "p", -5))
	assert.Equal(t, 1, s.State().Quantity("p"))

	require.NoError(t, s.RemoveFromCart(ctx, "q"))
	assert.Equal(t, []CartEntry{{ProductID: "p", Quantity: 1}}, s.State().Cart)

	require.NoError(t, s.ClearCart(ctx))
	require.NoError(t, s.ClearWishlist(ctx))
	assert.Empty(t, s.State().Cart)
	assert.Empty(t, s.State().Wishlist)
}

func TestFailedMutationRollsBack(t *testing.T) {
	server := &fakeServer{}
	s := NewSession(server, nil)
	ctx := context.Background()

	require.NoError(t, s.ToggleWishlist(ctx, "keep"))
	require.NoError(t, s.AddToCart(ctx, "p", 2))
	before := s.State()

	server.fail = true
	assert.ErrorIs(t, s.ToggleWishlist(ctx, "new"), errOffline)
	assert.ErrorIs(t, s.ToggleWishlist(ctx, "keep"), errOffline)
	assert.ErrorIs(t, s.AddToCart(ctx, "p", 3), errOffline)
	assert.ErrorIs(t, s.RemoveFromCart(ctx, "p"), errOffline)
	assert.ErrorIs(t, s.ClearCart(ctx), errOffline)

	assert.Equal(t, before, s.State())
}

func TestAddToCartRejectsNonPositiveQuantity(t *testing.T) {
	server := &fakeServer{}
	s := NewSession(server, nil)

	err := s.AddToCart(context.Background(), "p", 0)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.Equal(t, 0, server.calls)
	assert.Empty(t, s.State().Cart)
}

func TestLoad(t *testing.T) {
	server := &fakeServer{wishlist: []string{"a"}, cart: []CartEntry{{ProductID: "b", Quantity: 2}}}
	s := NewSession(server, nil)

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, []string{"a"}, s.State().Wishlist)
	assert.Equal(t, 2, s.State().Quantity("b"))

	server.fail = true
	assert.Error(t, s.Load(context.Background()))
	assert.Equal(t, []string{"a"}, s.State().Wishlist)
}

func TestConcurrentAddsKeepOneEntry(t *testing.T) {
	server := &fakeServer{}
	s := NewSession(server, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AddToCart(context.Background(), "p", 1)
			_ = s.State()
		}()
	}
	wg.Wait()

	state := s.State()
	require.Len(t, state.Cart, 1)
	assert.Equal(t, 20, state.Quantity("p"))
	assert.Equal(t, server.lines(), state.Cart)
}
