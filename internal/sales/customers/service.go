package customers

import (
	"context"

	"github.com/onlinestore/onlinestore/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns one page of customers; paging values are clamped first.
func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, shared.Page, error) {
	req.Limit, req.Offset = shared.ClampPage(req.Limit, req.Offset)
	customers, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Page{}, err
	}
	return customers, shared.NewPage(req.Limit, req.Offset, total), nil
}
