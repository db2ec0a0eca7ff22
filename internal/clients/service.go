package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitrine-commerce/vitrine/internal/platform/httpx"
)

// Service wraps client catalog business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new client. Email collisions win the tie-break over cpf
// collisions when both match an existing record.
func (s *Service) Create(ctx context.Context, req CreateClientRequest) (*Client, error) {
	existing, err := s.repo.FindByEmailOrCPF(ctx, req.Email, req.CPF)
	if err != nil && !errors.Is(err, httpx.ErrNotFound) {
		return nil, fmt.Errorf("check existing client: %w", err)
	}
	if existing != nil {
		if existing.Email == req.Email {
			return nil, fmt.Errorf("%w: a client with this email already exists", httpx.ErrDuplicate)
		}
		return nil, fmt.Errorf("%w: a client with this cpf already exists", httpx.ErrDuplicate)
	}

	return s.repo.Create(ctx, Client{
		Name:  req.Name,
		Email: req.Email,
		CPF:   req.CPF,
	})
}

// Update applies a partial update to a client.
func (s *Service) Update(ctx context.Context, id int64, req UpdateClientRequest) (*Client, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if len(updates) == 0 {
		return existing, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Get fetches a client by id.
func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of clients matching the filters.
func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, error) {
	return s.repo.List(ctx, req)
}

// Delete removes a client permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
