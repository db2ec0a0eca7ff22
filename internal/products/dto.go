package products

import "time"

type CreateProductRequest struct {
	Barcode        string         `json:"barcode" validate:"required,max=48"`
	Description    string         `json:"description" validate:"required,max=500"`
	PriceCents     int64          `json:"price_cents" validate:"gte=0"`
	Section        ProductSection `json:"section" validate:"required,oneof=clothing shoes accessories"`
	Inventory      int            `json:"inventory" validate:"gte=0"`
	ExpirationDate *time.Time     `json:"expiration_date,omitempty"`
}

// UpdateProductRequest is a partial update; only supplied fields are applied.
type UpdateProductRequest struct {
	Barcode        *string         `json:"barcode,omitempty" validate:"omitempty,max=48"`
	Description    *string         `json:"description,omitempty" validate:"omitempty,max=500"`
	PriceCents     *int64          `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	Section        *ProductSection `json:"section,omitempty" validate:"omitempty,oneof=clothing shoes accessories"`
	Inventory      *int            `json:"inventory,omitempty" validate:"omitempty,gte=0"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
}

type ListProductsRequest struct {
	Section      string
	MaxPrice     *int64
	MinInventory *int
	Limit        int
	Offset       int
}

type ProductListResponse struct {
	Products []Product `json:"products"`
}
