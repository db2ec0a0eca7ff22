package orders

import "time"

// OrderStatus tracks order fulfilment. The update endpoint accepts any valid
// status value; transition order is not enforced.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
)

// Order represents a client order and its items.
type Order struct {
	ID        int64       `json:"id" db:"id"`
	ClientID  int64       `json:"client_id" db:"client_id"`
	Status    OrderStatus `json:"status" db:"status"`
	OrderDate time.Time   `json:"order_date" db:"order_date"`
	Items     []Item      `json:"items" db:"-"`
}

// Item is a single order line referencing a product.
type Item struct {
	ID        int64 `json:"id" db:"id"`
	OrderID   int64 `json:"order_id" db:"order_id"`
	ProductID int64 `json:"product_id" db:"product_id"`
	Quantity  int   `json:"quantity" db:"quantity"`
}
