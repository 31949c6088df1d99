package services

import (
	"context"
	"strings"
	"time"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/dto"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/utils"
)

type BlogService struct {
	blogs BlogStore
}

func NewBlogService(blogs BlogStore) *BlogService {
	return &BlogService{blogs: blogs}
}

// ListPublished returns published posts, newest first.
func (s *BlogService) ListPublished(ctx context.Context) ([]models.Blog, error) {
	return s.blogs.ListPublished(ctx)
}

// GetBySlug returns NotFound for unknown or unpublished slugs.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, apperrors.New(apperrors.CodeNotFound, "blog not found")
	}
	return s.blogs.FindPublishedBySlug(ctx, slug)
}

func (s *BlogService) List(ctx context.Context, status string, page utils.Page) (Page[models.Blog], error) {
	items, total, err := s.blogs.List(ctx, status, page)
	if err != nil {
		return Page[models.Blog]{}, err
	}
	return newPage(items, page, total), nil
}

// Create checks the title up front; a slug collision still surfaces through
// the unique index as a conflict on "slug".
func (s *BlogService) Create(ctx context.Context, authorID string, in dto.CreateBlogDTO) (*models.Blog, error) {
	author, err := sessionUser(authorID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	exists, err := s.blogs.TitleExists(ctx, title, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("title", "a blog with this title already exists")
	}

	categories, err := utils.StringsToObjectIDs(in.Categories)
	if err != nil {
		return nil, validation("categories", "invalid category id")
	}

	b := &models.Blog{
		Title:         title,
		Slug:          utils.DeriveSlug(title),
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		FeaturedImage: in.FeaturedImage,
		Categories:    categories,
		Tags:          utils.NormalizeTags(in.Tags),
		Status:        models.BlogStatusDraft,
		AuthorID:      author,
	}
	if b.Slug == "" {
		return nil, validation("title", "title must contain letters or digits")
	}
	if in.Status != "" {
		b.Status = models.BlogStatus(in.Status)
	}
	if b.Status == models.BlogStatusPublished {
		now := time.Now().UTC()
		b.PublishedAt = &now
	}

	if err := s.blogs.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Update edits a post in place. The slug stays what it was at creation.
func (s *BlogService) Update(ctx context.Context, id string, in dto.UpdateBlogDTO) (*models.Blog, error) {
	oid, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	b, err := s.blogs.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title != b.Title {
			exists, err := s.blogs.TitleExists(ctx, title, &b.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, apperrors.Conflict("title", "a blog with this title already exists")
			}
			b.Title = title
		}
	}
	if in.Content != nil {
		b.Content = *in.Content
	}
	if in.Excerpt != nil {
		b.Excerpt = *in.Excerpt
	}
	if in.FeaturedImage != nil {
		b.FeaturedImage = *in.FeaturedImage
	}
	if in.Categories != nil {
		if b.Categories, err = utils.StringsToObjectIDs(*in.Categories); err != nil {
			return nil, validation("categories", "invalid category id")
		}
	}
	if in.Tags != nil {
		b.Tags = utils.NormalizeTags(*in.Tags)
	}
	if in.Status != nil {
		next := models.BlogStatus(*in.Status)
		if next == models.BlogStatusPublished && b.PublishedAt == nil {
			now := time.Now().UTC()
			b.PublishedAt = &now
		}
		b.Status = next
	}

	if err := s.blogs.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BlogService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "id")
	if err != nil {
		return err
	}
	return s.blogs.Delete(ctx, oid)
}

// SearchService runs the site search over blogs and products.
type SearchService struct {
	blogs    BlogStore
	products ProductStore
	limit    int
	log      *logger.Logger
}

func NewSearchService(blogs BlogStore, products ProductStore, limit int, log *logger.Logger) *SearchService {
	if limit <= 0 {
		limit = 20
	}
	return &SearchService{blogs: blogs, products: products, limit: limit, log: log}
}

// Search never fails: a blank query or a store error yields an empty list.
func (s *SearchService) Search(ctx context.Context, q string) []models.SearchResult {
	results := []models.SearchResult{}
	q = strings.TrimSpace(q)
	if q == "" {
		return results
	}
	ctx = s.log.WithField(ctx, "query", q)

	blogs, err := s.blogs.Search(ctx, q, s.limit)
	if err != nil {
		s.log.Error(ctx, "search.blogs_failed", err)
		return []models.SearchResult{}
	}
	products, err := s.products.Search(ctx, q, s.limit)
	if err != nil {
		s.log.Error(ctx, "search.products_failed", err)
		return []models.SearchResult{}
	}

	for _, b := range blogs {
		content := b.Excerpt
		if content == "" {
			content = truncate(b.Content, 200)
		}
		results = append(results, models.SearchResult{
			ID:       b.ID.Hex(),
			Title:    b.Title,
			Content:  content,
			URL:      "/blog/" + b.Slug,
			Category: "blog",
		})
	}
	for _, p := range products {
		results = append(results, models.SearchResult{
			ID:       p.ID.Hex(),
			Title:    p.Name,
			Content:  truncate(p.Description, 200),
			URL:      "/products/" + p.Slug,
			Category: "product",
		})
	}
	if len(results) > s.limit {
		results = results[:s.limit]
	}
	return results
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

type NewsletterService struct {
	subscribers NewsletterStore
}

func NewNewsletterService(subscribers NewsletterStore) *NewsletterService {
	return &NewsletterService{subscribers: subscribers}
}

// Subscribe creates the subscriber or re-activates an existing one.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	email = utils.NormalizeEmail(email)
	if !validEmail(email) {
		return nil, validation("email", "invalid email")
	}
	return s.subscribers.Subscribe(ctx, email)
}

func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)
	if !validEmail(email) {
		return validation("email", "invalid email")
	}
	return s.subscribers.Unsubscribe(ctx, email)
}

func (s *NewsletterService) List(ctx context.Context, activeOnly bool, page utils.Page) (Page[models.NewsletterSubscriber], error) {
	items, total, err := s.subscribers.List(ctx, activeOnly, page)
	if err != nil {
		return Page[models.NewsletterSubscriber]{}, err
	}
	return newPage(items, page, total), nil
}
