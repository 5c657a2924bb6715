package orders

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

func (s *Service) Get(ctx context.Context, id int64) (*SalesOrderWithDetails, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListSalesOrdersRequest) ([]SalesOrderWithDetails, shared.Page, error) {
	req.Limit, req.Offset = shared.ClampPage(req.Limit, req.Offset)
	orders, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Page{}, err
	}
	return orders, shared.NewPage(req.Limit, req.Offset, total), nil
}
