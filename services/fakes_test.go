package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/mailer"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/repository"
	"github.com/terragrow/storefront/utils"
)

func notFound(entity string) error {
	return apperrors.New(apperrors.CodeNotFound, entity+" not found")
}

// memUsers implements UserStore and WishlistStore.
type memUsers struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[bson.ObjectID]*models.User{}}
}

func (m *memUsers) add(u *models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	m.users[u.ID] = u
	return u
}

func (m *memUsers) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, notFound("user")
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user")
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperrors.Conflict("email", "user already exists")
		}
	}
	u.ID = bson.NewObjectID()
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) List(_ context.Context, role string, _ utils.Page) ([]models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if role == "" || string(u.Role) == role {
			out = append(out, *u)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memUsers) update(id bson.ObjectID, fn func(u *models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return notFound("user")
	}
	fn(u)
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id bson.ObjectID, hash string) error {
	return m.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (m *memUsers) UpdateProfile(_ context.Context, id bson.ObjectID, name *string, farms []models.Farm) error {
	return m.update(id, func(u *models.User) {
		if name != nil {
			u.Name = *name
		}
		if farms != nil {
			u.Farms = farms
		}
	})
}

func (m *memUsers) UpdateRole(_ context.Context, id bson.ObjectID, role models.Role) error {
	return m.update(id, func(u *models.User) { u.Role = role })
}

func (m *memUsers) SetActive(_ context.Context, id bson.ObjectID, active bool) error {
	return m.update(id, func(u *models.User) { u.IsActive = active })
}

func (m *memUsers) AddAchievement(_ context.Context, id bson.ObjectID, a models.Achievement) error {
	return m.update(id, func(u *models.User) { u.Achievements = append(u.Achievements, a) })
}

func (m *memUsers) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return notFound("user")
	}
	delete(m.users, id)
	return nil
}

func (m *memUsers) SetResetToken(_ context.Context, id bson.ObjectID, digest string, expiry time.Time) error {
	return m.update(id, func(u *models.User) {
		u.ResetPasswordToken = digest
		u.ResetPasswordExpiry = &expiry
	})
}

func (m *memUsers) SetVerificationToken(_ context.Context, id bson.ObjectID, digest string, expiry time.Time) error {
	return m.update(id, func(u *models.User) {
		u.VerificationToken = digest
		u.VerificationTokenExpiry = &expiry
	})
}

func (m *memUsers) ConsumeResetToken(_ context.Context, digest string, now time.Time, hash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ResetPasswordToken == digest && u.ResetPasswordExpiry != nil && u.ResetPasswordExpiry.After(now) {
			u.PasswordHash = hash
			u.ResetPasswordToken = ""
			u.ResetPasswordExpiry = nil
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user")
}

func (m *memUsers) ConsumeVerificationToken(_ context.Context, digest string, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.VerificationToken == digest && u.VerificationTokenExpiry != nil && u.VerificationTokenExpiry.After(now) {
			u.IsVerified = true
			u.VerificationToken = ""
			u.VerificationTokenExpiry = nil
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user")
}

func (m *memUsers) WishlistIDs(_ context.Context, userID bson.ObjectID) ([]bson.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, notFound("user")
	}
	return append([]bson.ObjectID{}, u.Wishlist...), nil
}

func (m *memUsers) AddToWishlist(ctx context.Context, userID, productID bson.ObjectID) ([]bson.ObjectID, error) {
	err := m.update(userID, func(u *models.User) {
		for _, id := range u.Wishlist {
			if id == productID {
				return
			}
		}
		u.Wishlist = append(u.Wishlist, productID)
	})
	if err != nil {
		return nil, err
	}
	return m.WishlistIDs(ctx, userID)
}

func (m *memUsers) RemoveFromWishlist(ctx context.Context, userID, productID bson.ObjectID) ([]bson.ObjectID, error) {
	err := m.update(userID, func(u *models.User) {
		kept := u.Wishlist[:0]
		for _, id := range u.Wishlist {
			if id != productID {
				kept = append(kept, id)
			}
		}
		u.Wishlist = kept
	})
	if err != nil {
		return nil, err
	}
	return m.WishlistIDs(ctx, userID)
}

func (m *memUsers) ClearWishlist(ctx context.Context, userID bson.ObjectID) ([]bson.ObjectID, error) {
	if err := m.update(userID, func(u *models.User) { u.Wishlist = nil }); err != nil {
		return nil, err
	}
	return m.WishlistIDs(ctx, userID)
}

type memTokens struct {
	mu     sync.Mutex
	tokens map[bson.ObjectID]*models.RefreshToken
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: map[bson.ObjectID]*models.RefreshToken{}}
}

func (m *memTokens) Insert(_ context.Context, t *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = bson.NewObjectID()
	m.tokens[t.ID] = t
	return nil
}

func (m *memTokens) FindActive(_ context.Context, hash string, now time.Time) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.TokenHash == hash && t.RevokedAt == nil && t.ExpiresAt.After(now) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, notFound("refresh token")
}

func (m *memTokens) Revoke(_ context.Context, id bson.ObjectID, replacedBy *string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.RevokedAt != nil {
		return notFound("refresh token")
	}
	t.RevokedAt = &now
	t.ReplacedBy = replacedBy
	return nil
}

func (m *memTokens) RevokeByHash(_ context.Context, hash string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.TokenHash == hash && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID bson.ObjectID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (m *memTokens) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tokens {
		if t.RevokedAt == nil {
			n++
		}
	}
	return n
}

type memProducts struct {
	mu       sync.Mutex
	products map[bson.ObjectID]*models.Product
	// failDecrementOn makes DecrementStock return an error for that product.
	failDecrementOn bson.ObjectID
	searchErr       error
}

func newMemProducts() *memProducts {
	return &memProducts{products: map[bson.ObjectID]*models.Product{}}
}

func (m *memProducts) add(p *models.Product) *models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	m.products[p.ID] = p
	return p
}

func (m *memProducts) stock(id bson.ObjectID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *memProducts) List(_ context.Context, f repository.ProductFilter, _ utils.Page) ([]models.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
			continue
		}
		if !f.IncludeAll && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *memProducts) FindByID(_ context.Context, id bson.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, notFound("product")
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, notFound("product")
}

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	m.add(p)
	return nil
}

func (m *memProducts) Save(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return notFound("product")
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memProducts) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

func (m *memProducts) Summaries(_ context.Context, ids []bson.ObjectID) ([]models.ProductSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ProductSummary{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, models.ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price, Images: p.Images})
		}
	}
	return out, nil
}

func (m *memProducts) DecrementStock(_ context.Context, id bson.ObjectID, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == m.failDecrementOn {
		return false, apperrors.New(apperrors.CodeDependency, "database unavailable")
	}
	p, ok := m.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (m *memProducts) IncrementStock(_ context.Context, id bson.ObjectID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		p.Stock += qty
	}
	return nil
}

func (m *memProducts) Search(_ context.Context, q string, _ int) ([]models.Product, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memCategories struct {
	mu         sync.Mutex
	categories map[bson.ObjectID]*models.Category
}

func newMemCategories() *memCategories {
	return &memCategories{categories: map[bson.ObjectID]*models.Category{}}
}

func (m *memCategories) List(_ context.Context, _ string, _ utils.Page) ([]models.Category, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Category
	for _, c := range m.categories {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (m *memCategories) FindByID(_ context.Context, id bson.ObjectID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, notFound("category")
	}
	cp := *c
	return &cp, nil
}

func (m *memCategories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, notFound("category")
}

func (m *memCategories) Create(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if existing.Slug == c.Slug {
			return apperrors.Conflict("slug", "category already exists")
		}
	}
	c.ID = bson.NewObjectID()
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memCategories) Save(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memCategories) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.categories, id)
	return nil
}

type cartKey struct{ user, product bson.ObjectID }

type memCart struct {
	mu    sync.Mutex
	order []cartKey
	qty   map[cartKey]int
}

func newMemCart() *memCart {
	return &memCart{qty: map[cartKey]int{}}
}

func (m *memCart) Increment(_ context.Context, userID, productID bson.ObjectID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := cartKey{userID, productID}
	if _, ok := m.qty[k]; !ok {
		m.order = append(m.order, k)
	}
	m.qty[k] += qty
	return nil
}

func (m *memCart) SetQuantity(_ context.Context, userID, productID bson.ObjectID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := cartKey{userID, productID}
	if _, ok := m.qty[k]; !ok {
		return notFound("cart item")
	}
	m.qty[k] = qty
	return nil
}

func (m *memCart) Remove(_ context.Context, userID, productID bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.qty, cartKey{userID, productID})
	return nil
}

func (m *memCart) Clear(_ context.Context, userID bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.qty {
		if k.user == userID {
			delete(m.qty, k)
		}
	}
	return nil
}

func (m *memCart) Snapshot(_ context.Context, userID bson.ObjectID) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := []models.CartLine{}
	for _, k := range m.order {
		q, ok := m.qty[k]
		if !ok || k.user != userID {
			continue
		}
		lines = append(lines, models.CartLine{ProductID: k.product, Quantity: q})
	}
	return lines, nil
}

type memBlogs struct {
	mu    sync.Mutex
	blogs map[bson.ObjectID]*models.Blog
}

func newMemBlogs() *memBlogs {
	return &memBlogs{blogs: map[bson.ObjectID]*models.Blog{}}
}

func (m *memBlogs) ListPublished(_ context.Context) ([]models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Blog
	for _, b := range m.blogs {
		if b.Status == models.BlogStatusPublished {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memBlogs) List(_ context.Context, _ string, _ utils.Page) ([]models.Blog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Blog
	for _, b := range m.blogs {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (m *memBlogs) FindPublishedBySlug(_ context.Context, slug string) (*models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.blogs {
		if b.Slug == slug && b.Status == models.BlogStatusPublished {
			cp := *b
			return &cp, nil
		}
	}
	return nil, notFound("blog")
}

func (m *memBlogs) FindByID(_ context.Context, id bson.ObjectID) (*models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blogs[id]
	if !ok {
		return nil, notFound("blog")
	}
	cp := *b
	return &cp, nil
}

func (m *memBlogs) TitleExists(_ context.Context, title string, exclude *bson.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.blogs {
		if b.Title == title && (exclude == nil || b.ID != *exclude) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memBlogs) Create(_ context.Context, b *models.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = bson.NewObjectID()
	cp := *b
	m.blogs[b.ID] = &cp
	return nil
}

func (m *memBlogs) Save(_ context.Context, b *models.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.blogs[b.ID] = &cp
	return nil
}

func (m *memBlogs) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blogs[id]; !ok {
		return notFound("blog")
	}
	delete(m.blogs, id)
	return nil
}

func (m *memBlogs) Search(_ context.Context, q string, _ int) ([]models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Blog
	for _, b := range m.blogs {
		if b.Status == models.BlogStatusPublished && strings.Contains(strings.ToLower(b.Title), strings.ToLower(q)) {
			out = append(out, *b)
		}
	}
	return out, nil
}

type memOrders struct {
	mu     sync.Mutex
	orders map[bson.ObjectID]*models.Order
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[bson.ObjectID]*models.Order{}}
}

func (m *memOrders) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = bson.NewObjectID()
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id bson.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, notFound("order")
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) ListByUser(_ context.Context, userID bson.ObjectID, _ utils.Page) ([]models.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memOrders) List(_ context.Context, _ string, _ utils.Page) ([]models.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id bson.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return nil, notFound("order")
	}
	o.Status = to
	cp := *o
	return &cp, nil
}

func (m *memOrders) AddNote(_ context.Context, id bson.ObjectID, note models.AdminNote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return notFound("order")
	}
	o.Notes = append(o.Notes, note)
	return nil
}

type memReturns struct {
	mu      sync.Mutex
	returns map[bson.ObjectID]*models.ReturnRequest
}

func newMemReturns() *memReturns {
	return &memReturns{returns: map[bson.ObjectID]*models.ReturnRequest{}}
}

func (m *memReturns) Create(_ context.Context, r *models.ReturnRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = bson.NewObjectID()
	cp := *r
	m.returns[r.ID] = &cp
	return nil
}

func (m *memReturns) FindByID(_ context.Context, id bson.ObjectID) (*models.ReturnRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.returns[id]
	if !ok {
		return nil, notFound("return request")
	}
	cp := *r
	return &cp, nil
}

func (m *memReturns) OpenForOrder(_ context.Context, orderID bson.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.returns {
		if r.OrderID == orderID && r.Status != models.ReturnStatusRejected && r.Status != models.ReturnStatusClosed {
			return true, nil
		}
	}
	return false, nil
}

func (m *memReturns) List(_ context.Context, f repository.ReturnFilter, _ utils.Page) ([]models.ReturnRequest, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ReturnRequest
	for _, r := range m.returns {
		if f.UserID != nil && r.UserID != *f.UserID {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (m *memReturns) UpdateStatus(_ context.Context, id bson.ObjectID, status models.ReturnStatus) (*models.ReturnRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.returns[id]
	if !ok {
		return nil, notFound("return request")
	}
	r.Status = status
	cp := *r
	return &cp, nil
}

func (m *memReturns) AddNote(_ context.Context, id bson.ObjectID, note models.AdminNote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.returns[id]
	if !ok {
		return notFound("return request")
	}
	r.Notes = append(r.Notes, note)
	if r.Status == models.ReturnStatusNew {
		r.Status = models.ReturnStatusInProgress
	}
	return nil
}

type memRefunds struct {
	mu      sync.Mutex
	refunds []models.Refund
}

func (m *memRefunds) Create(_ context.Context, r *models.Refund) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = bson.NewObjectID()
	m.refunds = append(m.refunds, *r)
	return nil
}

func (m *memRefunds) ListByReturn(_ context.Context, returnID bson.ObjectID) ([]models.Refund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Refund{}
	for _, r := range m.refunds {
		if r.ReturnRequestID == returnID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memNotifications struct {
	mu    sync.Mutex
	items []models.Notification
}

func (m *memNotifications) Create(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = bson.NewObjectID()
	m.items = append(m.items, *n)
	return nil
}

func (m *memNotifications) ListByUser(_ context.Context, userID bson.ObjectID, unreadOnly bool, _ utils.Page) ([]models.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.items {
		if n.UserID == userID && (!unreadOnly || n.ReadAt == nil) {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memNotifications) MarkRead(_ context.Context, userID, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].UserID == userID {
			now := time.Now()
			m.items[i].ReadAt = &now
			return nil
		}
	}
	return notFound("notification")
}

func (m *memNotifications) MarkAllRead(_ context.Context, userID bson.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.items {
		if m.items[i].UserID == userID && m.items[i].ReadAt == nil {
			now := time.Now()
			m.items[i].ReadAt = &now
			n++
		}
	}
	return n, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// countingLimiter allows the first limit calls per scope.
type countingLimiter struct {
	mu   sync.Mutex
	hits map[string]int64
}

func (l *countingLimiter) Allow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.hits == nil {
		l.hits = map[string]int64{}
	}
	l.hits[scope]++
	return l.hits[scope] <= limit, nil
}

// recordingViews is an in-memory ViewCache.
type recordingViews struct {
	mu          sync.Mutex
	values      map[string]any
	invalidated int
}

func (v *recordingViews) key(view, owner string) string { return view + ":" + owner }

func (v *recordingViews) Get(_ context.Context, view, owner string, dst any) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	val, ok := v.values[v.key(view, owner)]
	if !ok {
		return false, nil
	}
	if out, ok := dst.(*[]models.ProductSummary); ok {
		*out = val.([]models.ProductSummary)
	}
	return true, nil
}

func (v *recordingViews) Set(_ context.Context, view, owner string, value any) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.values == nil {
		v.values = map[string]any{}
	}
	v.values[v.key(view, owner)] = value
	return nil
}

func (v *recordingViews) Invalidate(_ context.Context, view, owner string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.values, v.key(view, owner))
	v.invalidated++
	return nil
}

type mapCounter map[string]int64

func (c mapCounter) Count(_ context.Context, collection string, filter bson.M) (int64, error) {
	if st, ok := filter["status"].(models.OrderStatus); ok {
		return c[collection+":"+string(st)], nil
	}
	return c[collection], nil
}

type memReviews struct {
	mu      sync.Mutex
	reviews []models.Review
}

func (m *memReviews) Create(_ context.Context, r *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.reviews {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			return apperrors.New(apperrors.CodeConflict, "review already exists")
		}
	}
	r.ID = bson.NewObjectID()
	r.CreatedAt = time.Now().UTC()
	m.reviews = append(m.reviews, *r)
	return nil
}

func (m *memReviews) ListByProduct(_ context.Context, productID bson.ObjectID, _ utils.Page) ([]models.Review, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Review
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}
