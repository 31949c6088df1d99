package services

import (
	"context"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/dto"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/utils"
)

func TestWishlistAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	products := newMemProducts()
	user := users.add(&models.User{Name: "Ama"})
	product := products.add(&models.Product{Name: "Cocoa", IsActive: true})
	views := &recordingViews{}
	svc := NewWishlistService(users, products, views, logger.Nop())

	ids, err := svc.Add(ctx, user.ID.Hex(), product.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{product.ID.Hex()}, ids)

	ids, err = svc.Add(ctx, user.ID.Hex(), product.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{product.ID.Hex()}, ids)
	assert.Equal(t, 2, views.invalidated)
}

func TestWishlistRemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	user := users.add(&models.User{Name: "Ama"})
	svc := NewWishlistService(users, newMemProducts(), nil, logger.Nop())

	ids, err := svc.Remove(ctx, user.ID.Hex(), bson.NewObjectID().Hex())
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)
}

func TestWishlistRequiresSession(t *testing.T) {
	svc := NewWishlistService(newMemUsers(), newMemProducts(), nil, logger.Nop())

	_, err := svc.Get(context.Background(), "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	_, err = svc.Add(context.Background(), "not-an-id", bson.NewObjectID().Hex())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestWishlistAddUnknownProduct(t *testing.T) {
	users := newMemUsers()
	user := users.add(&models.User{Name: "Ama"})
	svc := NewWishlistService(users, newMemProducts(), nil, logger.Nop())

	_, err := svc.Add(context.Background(), user.ID.Hex(), bson.NewObjectID().Hex())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestWishlistViewIsCachedUntilMutation(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	products := newMemProducts()
	user := users.add(&models.User{Name: "Ama"})
	first := products.add(&models.Product{Name: "Cocoa", IsActive: true})
	second := products.add(&models.Product{Name: "Shea", IsActive: true})
	views := &recordingViews{}
	svc := NewWishlistService(users, products, views, logger.Nop())

	_, err := svc.Add(ctx, user.ID.Hex(), first.ID.Hex())
	require.NoError(t, err)

	view, err := svc.View(ctx, user.ID.Hex())
	require.NoError(t, err)
	require.Len(t, view, 1)

	// bypass the service: the cached view is still served
	_, err = users.AddToWishlist(ctx, user.ID, second.ID)
	require.NoError(t, err)
	view, err = svc.View(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, view, 1)

	_, err = svc.Remove(ctx, user.ID.Hex(), first.ID.Hex())
	require.NoError(t, err)
	view, err = svc.View(ctx, user.ID.Hex())
	require.NoError(t, err)
	require.Len(t, view, 1)
	assert.Equal(t, second.ID, view[0].ID)
}

func TestCartAddMergesQuantities(t *testing.T) {
	ctx := context.Background()
	products := newMemProducts()
	product := products.add(&models.Product{Name: "Maize", IsActive: true, Stock: 10})
	svc := NewCartService(newMemCart(), products)
	uid := bson.NewObjectID().Hex()

	_, err := svc.Add(ctx, uid, product.ID.Hex(), 2)
	require.NoError(t, err)
	lines, err := svc.Add(ctx, uid, product.ID.Hex(), 3)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestCartUpdateQuantityClampsToOne(t *testing.T) {
	ctx := context.Background()
	products := newMemProducts()
	product := products.add(&models.Product{Name: "Maize", IsActive: true})
	svc := NewCartService(newMemCart(), products)
	uid := bson.NewObjectID().Hex()

	_, err := svc.Add(ctx, uid, product.ID.Hex(), 4)
	require.NoError(t, err)
	lines, err := svc.UpdateQuantity(ctx, uid, product.ID.Hex(), -5)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestCartRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	products := newMemProducts()
	inactive := products.add(&models.Product{Name: "Old", IsActive: false})
	active := products.add(&models.Product{Name: "New", IsActive: true})
	svc := NewCartService(newMemCart(), products)
	uid := bson.NewObjectID().Hex()

	_, err := svc.Add(ctx, uid, active.ID.Hex(), 0)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = svc.Add(ctx, uid, inactive.ID.Hex(), 1)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	lines, err := svc.Clear(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func newOrderFixture() (*OrderService, *memCart, *memProducts, *memOrders, *memNotifications) {
	cart := newMemCart()
	products := newMemProducts()
	orders := newMemOrders()
	notes := &memNotifications{}
	svc := NewOrderService(orders, cart, products, notes, newMemUsers(), nil, logger.Nop())
	return svc, cart, products, orders, notes
}

func TestPlaceOrderTotalsAndStock(t *testing.T) {
	ctx := context.Background()
	svc, cart, products, _, _ := newOrderFixture()
	uid := bson.NewObjectID()
	a := products.add(&models.Product{Name: "Rice", Price: 10, Discount: 10, Stock: 5, IsActive: true})
	b := products.add(&models.Product{Name: "Beans", Price: 3.35, Stock: 5, IsActive: true})
	require.NoError(t, cart.Increment(ctx, uid, a.ID, 2))
	require.NoError(t, cart.Increment(ctx, uid, b.ID, 3))

	order, err := svc.Place(ctx, uid.Hex(), dto.PlaceOrderDTO{})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.InDelta(t, 9.0, order.Items[0].UnitPrice, 0.001)
	assert.InDelta(t, 28.05, order.Total, 0.001)
	assert.Equal(t, 3, products.stock(a.ID))
	assert.Equal(t, 2, products.stock(b.ID))

	lines, err := cart.Snapshot(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestPlaceOrderReleasesStockWhenALineIsShort(t *testing.T) {
	ctx := context.Background()
	svc, cart, products, orders, _ := newOrderFixture()
	uid := bson.NewObjectID()
	a := products.add(&models.Product{Name: "Rice", Price: 10, Stock: 5, IsActive: true})
	b := products.add(&models.Product{Name: "Beans", Price: 3, Stock: 1, IsActive: true})
	require.NoError(t, cart.Increment(ctx, uid, a.ID, 2))
	require.NoError(t, cart.Increment(ctx, uid, b.ID, 3))

	_, err := svc.Place(ctx, uid.Hex(), dto.PlaceOrderDTO{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	assert.Equal(t, 5, products.stock(a.ID))
	assert.Equal(t, 1, products.stock(b.ID))
	assert.Empty(t, orders.orders)

	lines, err := cart.Snapshot(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, lines, 2, "cart is kept when the order fails")
}

func TestPlaceOrderReleasesStockOnStoreError(t *testing.T) {
	ctx := context.Background()
	svc, cart, products, _, _ := newOrderFixture()
	uid := bson.NewObjectID()
	a := products.add(&models.Product{Name: "Rice", Price: 10, Stock: 5, IsActive: true})
	b := products.add(&models.Product{Name: "Beans", Price: 3, Stock: 5, IsActive: true})
	products.failDecrementOn = b.ID
	require.NoError(t, cart.Increment(ctx, uid, a.ID, 2))
	require.NoError(t, cart.Increment(ctx, uid, b.ID, 1))

	_, err := svc.Place(ctx, uid.Hex(), dto.PlaceOrderDTO{})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDependency))
	assert.Equal(t, 5, products.stock(a.ID))
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc, _, _, _, _ := newOrderFixture()
	_, err := svc.Place(context.Background(), bson.NewObjectID().Hex(), dto.PlaceOrderDTO{})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestOrderStatusTransitions(t *testing.T) {
	ctx := context.Background()
	svc, cart, products, _, notes := newOrderFixture()
	uid := bson.NewObjectID()
	p := products.add(&models.Product{Name: "Rice", Price: 10, Stock: 5, IsActive: true})
	require.NoError(t, cart.Increment(ctx, uid, p.ID, 2))
	order, err := svc.Place(ctx, uid.Hex(), dto.PlaceOrderDTO{})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID.Hex(), string(models.OrderStatusDelivered))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	updated, err := svc.UpdateStatus(ctx, order.ID.Hex(), string(models.OrderStatusCancelled))
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)
	assert.Equal(t, 5, products.stock(p.ID), "cancelling restocks")
	require.Len(t, notes.items, 1)
	assert.Equal(t, uid, notes.items[0].UserID)
	assert.Equal(t, models.NotificationOrderUpdate, notes.items[0].Type)
}

func TestGetMineHidesOtherUsersOrders(t *testing.T) {
	ctx := context.Background()
	svc, _, _, orders, _ := newOrderFixture()
	owner := bson.NewObjectID()
	o := &models.Order{UserID: owner, Status: models.OrderStatusPending}
	require.NoError(t, orders.Create(ctx, o))

	_, err := svc.GetMine(ctx, bson.NewObjectID().Hex(), o.ID.Hex())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	got, err := svc.GetMine(ctx, owner.Hex(), o.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestOrderAddNoteRequiresContent(t *testing.T) {
	ctx := context.Background()
	svc, _, _, orders, _ := newOrderFixture()
	o := &models.Order{UserID: bson.NewObjectID(), Status: models.OrderStatusPending}
	require.NoError(t, orders.Create(ctx, o))
	actor := Actor{ID: bson.NewObjectID().Hex(), Email: "staff@terragrow.test"}

	_, err := svc.AddNote(ctx, actor, o.ID.Hex(), "   ")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	got, err := svc.AddNote(ctx, actor, o.ID.Hex(), "called the customer")
	require.NoError(t, err)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "staff@terragrow.test", got.Notes[0].AuthorEmail)
}

func TestListProductsUnknownCategoryIsEmpty(t *testing.T) {
	products := newMemProducts()
	products.add(&models.Product{Name: "Rice", IsActive: true})
	svc := NewCatalogService(products, newMemCategories(), nil, 4, logger.Nop())

	page, err := svc.ListProducts(context.Background(), ProductQuery{CategorySlug: "nope"}, utils.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Zero(t, page.Total)
}

func TestCategorySlugFollowsName(t *testing.T) {
	ctx := context.Background()
	categories := newMemCategories()
	svc := NewCatalogService(newMemProducts(), categories, nil, 4, logger.Nop())

	c, err := svc.CreateCategory(ctx, dto.CreateCategoryDTO{Name: "Fresh Vegetables"})
	require.NoError(t, err)
	assert.Equal(t, "fresh-vegetables", c.Slug)
	assert.True(t, c.IsActive)

	name := "Leafy Greens"
	c, err = svc.UpdateCategory(ctx, c.ID.Hex(), dto.UpdateCategoryDTO{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "leafy-greens", c.Slug)

	got, err := svc.GetCategoryBySlug(ctx, "leafy-greens")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = svc.CreateCategory(ctx, dto.CreateCategoryDTO{Name: "Leafy Greens"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestCreateProductImageLimit(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(newMemProducts(), newMemCategories(), nil, 1, logger.Nop())
	_, err := svc.CreateProduct(ctx, bson.NewObjectID().Hex(), dto.CreateProductDTO{Name: "Rice"}, make([]*multipart.FileHeader, 2))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestReviewOncePerUserAndProduct(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	products := newMemProducts()
	user := users.add(&models.User{Name: "Kofi"})
	product := products.add(&models.Product{Name: "Shea butter", IsActive: true})
	svc := NewReviewService(&memReviews{}, products, users)

	review, err := svc.Create(ctx, user.ID.Hex(), product.ID.Hex(), dto.CreateReviewDTO{Rating: 4, Comment: "  smooth  "})
	require.NoError(t, err)
	assert.Equal(t, "Kofi", review.UserName)
	assert.Equal(t, "smooth", review.Comment)

	_, err = svc.Create(ctx, user.ID.Hex(), product.ID.Hex(), dto.CreateReviewDTO{Rating: 5})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	_, err = svc.Create(ctx, user.ID.Hex(), product.ID.Hex(), dto.CreateReviewDTO{Rating: 9})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = svc.Create(ctx, user.ID.Hex(), bson.NewObjectID().Hex(), dto.CreateReviewDTO{Rating: 3})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	page, err := svc.List(ctx, product.ID.Hex(), utils.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.EqualValues(t, 1, page.Total)
}

func TestWishlistConcurrentAddsLeaveOneEntry(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	products := newMemProducts()
	user := users.add(&models.User{Name: "Ama"})
	product := products.add(&models.Product{Name: "Compost", IsActive: true})
	svc := NewWishlistService(users, products, nil, logger.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Add(ctx, user.ID.Hex(), product.ID.Hex())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ids, err := svc.Get(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{product.ID.Hex()}, ids)
}
