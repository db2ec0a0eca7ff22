package orders

import "time"

type CreateOrderRequest struct {
	ClientID int64                    `json:"client_id" validate:"required,gt=0"`
	Items    []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CreateOrderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type UpdateOrderRequest struct {
	Status *OrderStatus `json:"status,omitempty" validate:"omitempty,oneof=pending shipped delivered"`
}

type ListOrdersRequest struct {
	ClientID *int64
	Status   *OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

type OrderListResponse struct {
	Orders []Order `json:"orders"`
}
