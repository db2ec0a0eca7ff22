package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/vitrine-commerce/vitrine/internal/platform/httpx"
)

// Service coordinates the order workflow.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create validates and persists an order with its items in one transaction.
// Each product row is locked before the stock check so that concurrent
// orders cannot both pass it; inventory is decremented in the same
// transaction. Any failure rolls back the order, its items, and the
// decrements.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var orderID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		exists, err := tx.ClientExists(ctx, req.ClientID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: client not found", httpx.ErrNotFound)
		}

		orderID, err = tx.InsertOrder(ctx, Order{
			ClientID:  req.ClientID,
			Status:    StatusPending,
			OrderDate: s.now().UTC(),
		})
		if err != nil {
			return err
		}

		for _, line := range req.Items {
			stock, err := tx.LockProduct(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if stock.Inventory < line.Quantity {
				return fmt.Errorf("%w: insufficient stock for product %d", httpx.ErrValidation, line.ProductID)
			}
			if err := tx.DecrementInventory(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
			if _, err := tx.InsertItem(ctx, Item{
				OrderID:   orderID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, orderID)
}

// Update overwrites the order status when one is provided. Transitions are
// not validated; any valid status value is accepted.
func (s *Service) Update(ctx context.Context, id int64, req UpdateOrderRequest) (*Order, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status == nil {
		return existing, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, *req.Status); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Get fetches an order with its items.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of orders matching the filters, items included.
func (s *Service) List(ctx context.Context, req ListOrdersRequest) ([]Order, error) {
	return s.repo.List(ctx, req)
}

// Delete removes an order and its items in one transaction.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.DeleteItems(ctx, id); err != nil {
			return err
		}
		return tx.DeleteOrder(ctx, id)
	})
}
