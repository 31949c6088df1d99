// Package clientstore mirrors the browser-side cart and wishlist: pure
// reducers over State, plus a Session that applies changes optimistically and
// reconciles them with the server.
package clientstore

// CartEntry is one line of the local cart.
type CartEntry struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// State is the client's view of the shopper's wishlist and cart.
type State struct {
	Wishlist []string
	Cart     []CartEntry
}

type ActionKind int

const (
	WishlistToggled ActionKind = iota
	WishlistReplaced
	CartAdded
	CartQuantitySet
	CartRemoved
	CartCleared
	CartReplaced
)

// Action describes one state transition. ProductID and Quantity drive the
// local edits; Wishlist and Cart carry server snapshots.
type Action struct {
	Kind      ActionKind
	ProductID string
	Quantity  int
	Wishlist  []string
	Cart      []CartEntry
}

// Reduce returns the state after a. It never mutates s.
func Reduce(s State, a Action) State {
	next := s.clone()
	switch a.Kind {
	case WishlistToggled:
		if s.IsInWishlist(a.ProductID) {
			next.Wishlist = without(next.Wishlist, a.ProductID)
		} else {
			next.Wishlist = append(next.Wishlist, a.ProductID)
		}
	case WishlistReplaced:
		next.Wishlist = append([]string{}, a.Wishlist...)
	case CartAdded:
		for i := range next.Cart {
			if next.Cart[i].ProductID == a.ProductID {
				next.Cart[i].Quantity += a.Quantity
				return next
			}
		}
		next.Cart = append(next.Cart, CartEntry{ProductID: a.ProductID, Quantity: a.Quantity})
	case CartQuantitySet:
		qty := a.Quantity
		if qty < 1 {
			qty = 1
		}
		for i := range next.Cart {
			if next.Cart[i].ProductID == a.ProductID {
				next.Cart[i].Quantity = qty
			}
		}
	case CartRemoved:
		cart := next.Cart[:0]
		for _, e := range next.Cart {
			if e.ProductID != a.ProductID {
				cart = append(cart, e)
			}
		}
		next.Cart = cart
	case CartCleared:
		next.Cart = []CartEntry{}
	case CartReplaced:
		next.Cart = merge(a.Cart)
	}
	return next
}

func (s State) IsInWishlist(productID string) bool {
	for _, id := range s.Wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

// Quantity is 0 for products not in the cart.
func (s State) Quantity(productID string) int {
	for _, e := range s.Cart {
		if e.ProductID == productID {
			return e.Quantity
		}
	}
	return 0
}

func (s State) clone() State {
	return State{
		Wishlist: append([]string{}, s.Wishlist...),
		Cart:     append([]CartEntry{}, s.Cart...),
	}
}

func without(ids []string, drop string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

// merge keys a server snapshot by product id, keeping first-seen order.
func merge(entries []CartEntry) []CartEntry {
	out := make([]CartEntry, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := index[e.ProductID]; ok {
			out[i].Quantity = e.Quantity
			continue
		}
		index[e.ProductID] = len(out)
		out = append(out, e)
	}
	return out
}
