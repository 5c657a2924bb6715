package users

import (
	"context"

	"github.com/onlinestore/onlinestore/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context, limit, offset int) ([]User, error)
	CountUsers(ctx context.Context) (int, error)
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns one page of users and the page metadata.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]User, shared.Page, error) {
	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, shared.Page{}, err
	}
	page := shared.NewPage(limit, offset, total)
	users, err := s.repo.ListUsers(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, shared.Page{}, err
	}
	return users, page, nil
}
