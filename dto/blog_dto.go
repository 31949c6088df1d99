package dto

type CreateBlogDTO struct {
	Title         string   `json:"title" binding:"required,max=200"`
	Content       string   `json:"content" binding:"required"`
	Excerpt       string   `json:"excerpt" binding:"max=500"`
	FeaturedImage string   `json:"featuredImage"`
	Categories    []string `json:"categories" binding:"dive,objectid"`
	Tags          []string `json:"tags"`
	Status        string   `json:"status" binding:"omitempty,oneof=draft published archived"`
}

// UpdateBlogDTO never touches the slug.
type UpdateBlogDTO struct {
	Title         *string   `json:"title" binding:"omitempty,max=200"`
	Content       *string   `json:"content"`
	Excerpt       *string   `json:"excerpt" binding:"omitempty,max=500"`
	FeaturedImage *string   `json:"featuredImage"`
	Categories    *[]string `json:"categories"`
	Tags          *[]string `json:"tags"`
	Status        *string   `json:"status" binding:"omitempty,oneof=draft published archived"`
}

type NewsletterDTO struct {
	Email string `json:"email" binding:"required,email"`
}
