package dto

// CreateReturnRequestDTO is parsed from the "data" multipart field (JSON);
// the optional photo travels in the "file" field.
type CreateReturnRequestDTO struct {
	OrderID string `json:"orderId" binding:"required,objectid"`
	Reason  string `json:"reason" binding:"required,min=5,max=500"`
	Details string `json:"details" binding:"max=8000"`
}

type UpdateReturnStatusDTO struct {
	Status string `json:"status" binding:"required"`
}

type CreateRefundDTO struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Reason string  `json:"reason" binding:"max=1000"`
}
