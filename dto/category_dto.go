package dto

// CreateCategoryDTO: the slug is always derived from Name.
type CreateCategoryDTO struct {
	Name        string `json:"name" binding:"required,max=80"`
	Description string `json:"description" binding:"max=2000"`
	IsActive    *bool  `json:"isActive"`
	ImageURL    string `json:"imageUrl" binding:"omitempty,url"`
}

// UpdateCategoryDTO: all fields are optional pointers
type UpdateCategoryDTO struct {
	Name        *string `json:"name" binding:"omitempty,max=80"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
	ImageURL    *string `json:"imageUrl"`
}
