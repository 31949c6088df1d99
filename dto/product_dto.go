package dto

// CreateProductDTO is parsed from the "data" multipart field (JSON).
type CreateProductDTO struct {
	Name           string            `json:"name" binding:"required,min=3"`
	SKU            string            `json:"sku" binding:"required"`
	Description    string            `json:"description"`
	CategoryID     string            `json:"categoryId" binding:"required,objectid"`
	Price          float64           `json:"price" binding:"gte=0"`
	Discount       float64           `json:"discount" binding:"gte=0,lte=100"`
	Stock          int               `json:"stock" binding:"gte=0"`
	Unit           string            `json:"unit" binding:"required,unit"`
	Tags           []string          `json:"tags"`
	Specifications map[string]string `json:"specifications"`
	IsActive       *bool             `json:"isActive"`
}

type UpdateProductDTO struct {
	Name              *string            `json:"name,omitempty" binding:"omitempty,min=3"`
	SKU               *string            `json:"sku,omitempty"`
	Description       *string            `json:"description,omitempty"`
	CategoryID        *string            `json:"categoryId,omitempty" binding:"omitempty,objectid"`
	Price             *float64           `json:"price,omitempty" binding:"omitempty,gte=0"`
	Discount          *float64           `json:"discount,omitempty" binding:"omitempty,gte=0,lte=100"`
	Stock             *int               `json:"stock,omitempty" binding:"omitempty,gte=0"`
	Unit              *string            `json:"unit,omitempty" binding:"omitempty,unit"`
	Tags              *[]string          `json:"tags,omitempty"`
	Specifications    *map[string]string `json:"specifications,omitempty"`
	IsActive          *bool              `json:"isActive,omitempty"`
	RemovedImagesUrls []string           `json:"removedImagesUrls,omitempty"`
}

type CreateReviewDTO struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}
