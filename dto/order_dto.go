package dto

type WishlistItemDTO struct {
	ProductID string `json:"productId" binding:"required"`
}

type AddToCartDTO struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartItemDTO struct {
	Quantity int `json:"quantity"`
}

type ShippingAddressDTO struct {
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone"`
	Line1    string `json:"line1" binding:"required"`
	City     string `json:"city" binding:"required"`
	Country  string `json:"country" binding:"required"`
}

type PlaceOrderDTO struct {
	ShippingAddress ShippingAddressDTO `json:"shippingAddress" binding:"required"`
	Message         string             `json:"message" binding:"max=2000"`
}

type UpdateOrderStatusDTO struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

type AddAdminNoteDTO struct {
	Content string `json:"content" binding:"required,min=1,max=5000"`
}
