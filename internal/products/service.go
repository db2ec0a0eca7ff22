package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitrine-commerce/vitrine/internal/platform/httpx"
)

// Service wraps product catalog business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new product; the barcode must be unused.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	existing, err := s.repo.GetByBarcode(ctx, req.Barcode)
	if err != nil && !errors.Is(err, httpx.ErrNotFound) {
		return nil, fmt.Errorf("check existing product: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: a product with this barcode already exists", httpx.ErrDuplicate)
	}

	return s.repo.Create(ctx, Product{
		Barcode:        req.Barcode,
		Description:    req.Description,
		PriceCents:     req.PriceCents,
		Section:        req.Section,
		Inventory:      req.Inventory,
		ExpirationDate: req.ExpirationDate,
	})
}

// Update applies a partial update to a product.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Barcode != nil {
		updates["barcode"] = *req.Barcode
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PriceCents != nil {
		updates["price_cents"] = *req.PriceCents
	}
	if req.Section != nil {
		updates["section"] = string(*req.Section)
	}
	if req.Inventory != nil {
		updates["inventory"] = *req.Inventory
	}
	if req.ExpirationDate != nil {
		updates["expiration_date"] = *req.ExpirationDate
	}
	if len(updates) == 0 {
		return existing, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Get fetches a product by id.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of products matching the filters.
func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, error) {
	return s.repo.List(ctx, req)
}

// Delete removes a product permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
