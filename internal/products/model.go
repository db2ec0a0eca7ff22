package products

import "time"

// ProductSection partitions the catalog.
type ProductSection string

const (
	SectionClothing    ProductSection = "clothing"
	SectionShoes       ProductSection = "shoes"
	SectionAccessories ProductSection = "accessories"
)

// Product represents a catalog product. Inventory is the on-hand stock count
// decremented by order creation.
type Product struct {
	ID             int64          `json:"id" db:"id"`
	Barcode        string         `json:"barcode" db:"barcode"`
	Description    string         `json:"description" db:"description"`
	PriceCents     int64          `json:"price_cents" db:"price_cents"`
	Section        ProductSection `json:"section" db:"section"`
	Inventory      int            `json:"inventory" db:"inventory"`
	ExpirationDate *time.Time     `json:"expiration_date,omitempty" db:"expiration_date"`
}
