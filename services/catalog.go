package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/dto"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/models"
	"github.com/terragrow/storefront/repository"
	"github.com/terragrow/storefront/storage"
	"github.com/terragrow/storefront/utils"
)

type CatalogService struct {
	products   ProductStore
	categories CategoryStore
	media      storage.Storage
	maxImages  int
	log        *logger.Logger
}

func NewCatalogService(products ProductStore, categories CategoryStore, media storage.Storage, maxImages int, log *logger.Logger) *CatalogService {
	if media == nil {
		media = storage.Disabled{}
	}
	if maxImages <= 0 {
		maxImages = 4
	}
	return &CatalogService{
		products:   products,
		categories: categories,
		media:      media,
		maxImages:  maxImages,
		log:        log,
	}
}

// Categories

func (s *CatalogService) ListCategories(ctx context.Context, q string, page utils.Page) (Page[models.Category], error) {
	items, total, err := s.categories.List(ctx, strings.TrimSpace(q), page)
	if err != nil {
		return Page[models.Category]{}, err
	}
	return newPage(items, page, total), nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	oid, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	return s.categories.FindByID(ctx, oid)
}

func (s *CatalogService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.categories.FindBySlug(ctx, strings.TrimSpace(slug))
}

func (s *CatalogService) CreateCategory(ctx context.Context, in dto.CreateCategoryDTO) (*models.Category, error) {
	c := &models.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		IsActive:    true,
		ImageURL:    in.ImageURL,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	c.BeforeSave(true)
	if c.Slug == "" {
		return nil, validation("name", "name must contain letters or digits")
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in dto.UpdateCategoryDTO) (*models.Category, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	nameChanged := false
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		nameChanged = name != c.Name
		c.Name = name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.ImageURL != nil {
		c.ImageURL = *in.ImageURL
	}

	c.BeforeSave(nameChanged)
	if c.Slug == "" {
		return nil, validation("name", "name must contain letters or digits")
	}
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	oid, err := parseID(id, "id")
	if err != nil {
		return err
	}
	return s.categories.Delete(ctx, oid)
}

// Products

// ProductQuery carries the public listing parameters.
type ProductQuery struct {
	CategorySlug string
	Query        string
	Sort         string
	Tag          string
	MinPrice     *float64
	MaxPrice     *float64
	IncludeAll   bool
}

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery, page utils.Page) (Page[models.Product], error) {
	filter := repository.ProductFilter{
		Query:      strings.TrimSpace(q.Query),
		Sort:       q.Sort,
		Tag:        strings.ToLower(strings.TrimSpace(q.Tag)),
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		IncludeAll: q.IncludeAll,
	}
	if q.CategorySlug != "" {
		cat, err := s.categories.FindBySlug(ctx, q.CategorySlug)
		if err != nil {
			if apperrors.IsCode(err, apperrors.CodeNotFound) {
				return newPage([]models.Product{}, page, 0), nil
			}
			return Page[models.Product]{}, err
		}
		filter.CategoryID = &cat.ID
	}

	items, total, err := s.products.List(ctx, filter, page)
	if err != nil {
		return Page[models.Product]{}, err
	}
	return newPage(items, page, total), nil
}

func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.products.FindBySlug(ctx, strings.TrimSpace(slug))
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	oid, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}
	return s.products.FindByID(ctx, oid)
}

func (s *CatalogService) CreateProduct(ctx context.Context, actorID string, in dto.CreateProductDTO, files []*multipart.FileHeader) (*models.Product, error) {
	actor, err := sessionUser(actorID)
	if err != nil {
		return nil, err
	}
	if len(files) > s.maxImages {
		return nil, validation("images", fmt.Sprintf("at most %d images are allowed", s.maxImages))
	}
	categoryID, err := s.ensureCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:           strings.TrimSpace(in.Name),
		SKU:            strings.TrimSpace(in.SKU),
		Description:    in.Description,
		CategoryID:     categoryID,
		Price:          in.Price,
		Discount:       in.Discount,
		Stock:          in.Stock,
		Unit:           models.Unit(in.Unit),
		Images:         []string{},
		Tags:           utils.NormalizeTags(in.Tags),
		Specifications: in.Specifications,
		IsActive:       true,
		CreatedBy:      actor,
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.Slug = utils.DeriveSlug(p.Name)
	if p.Slug == "" {
		return nil, validation("name", "name must contain letters or digits")
	}

	uploaded, err := storage.UploadAll(ctx, s.media, "products/"+p.Slug, files)
	if err != nil {
		return nil, err
	}
	for _, att := range uploaded {
		p.Images = append(p.Images, att.URL)
	}

	if err := s.products.Create(ctx, p); err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	return p, nil
}

// UpdateProduct applies the patch, drops removed images and appends new
// uploads. Removed objects are deleted from storage only after the save.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in dto.UpdateProductDTO, files []*multipart.FileHeader) (*models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name != p.Name {
			p.Name = name
			p.Slug = utils.DeriveSlug(name)
			if p.Slug == "" {
				return nil, validation("name", "name must contain letters or digits")
			}
		}
	}
	if in.SKU != nil {
		p.SKU = strings.TrimSpace(*in.SKU)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.CategoryID != nil {
		if p.CategoryID, err = s.ensureCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Discount != nil {
		p.Discount = *in.Discount
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Unit != nil {
		p.Unit = models.Unit(*in.Unit)
	}
	if in.Tags != nil {
		p.Tags = utils.NormalizeTags(*in.Tags)
	}
	if in.Specifications != nil {
		p.Specifications = *in.Specifications
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	removed := utils.IntersectStrings(in.RemovedImagesUrls, p.Images)
	kept := utils.MergeStrings(p.Images, removed, nil)
	if len(kept)+len(files) > s.maxImages {
		return nil, validation("images", fmt.Sprintf("at most %d images are allowed", s.maxImages))
	}

	uploaded, err := storage.UploadAll(ctx, s.media, "products/"+p.Slug, files)
	if err != nil {
		return nil, err
	}
	added := make([]string, 0, len(uploaded))
	for _, att := range uploaded {
		added = append(added, att.URL)
	}
	p.Images = utils.MergeStrings(kept, nil, added)

	if err := s.products.Save(ctx, p); err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	s.deleteURLs(ctx, removed)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.deleteURLs(ctx, p.Images)
	return nil
}

func (s *CatalogService) ensureCategory(ctx context.Context, raw string) (bson.ObjectID, error) {
	id, err := parseID(raw, "categoryId")
	if err != nil {
		return bson.ObjectID{}, err
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return bson.ObjectID{}, validation("categoryId", "category does not exist")
		}
		return bson.ObjectID{}, err
	}
	return id, nil
}

func (s *CatalogService) discard(ctx context.Context, uploaded []*models.Attachment) {
	names := make([]string, 0, len(uploaded))
	for _, att := range uploaded {
		names = append(names, att.ObjectName)
	}
	if err := s.media.Delete(ctx, names...); err != nil {
		s.log.Error(ctx, "catalog.discard_uploads_failed", err)
	}
}

func (s *CatalogService) deleteURLs(ctx context.Context, urls []string) {
	names := make([]string, 0, len(urls))
	for _, u := range urls {
		name, err := s.media.ObjectName(u)
		if err != nil {
			s.log.Warn(s.log.WithField(ctx, "url", u), "catalog.unknown_image_url")
			continue
		}
		names = append(names, name)
	}
	if err := s.media.Delete(ctx, names...); err != nil {
		s.log.Error(ctx, "catalog.delete_images_failed", err)
	}
}
