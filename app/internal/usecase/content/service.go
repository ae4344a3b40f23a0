package content

import (
	"context"
	"errors"
	"strings"

	dom "example.com/storefront/app/internal/domain/content"
)

type Service struct {
	repo dom.Repository
}

func NewService(repo dom.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *dom.Page) (*dom.Page, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := dom.ValidateName(p.Name); err != nil {
		return nil, err
	}
	if err := dom.ValidateContent(p.Content); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

// Update replaces the content of a page. Names are fixed once created.
func (s *Service) Update(ctx context.Context, id int64, content []byte) (*dom.Page, error) {
	if err := dom.ValidateContent(content); err != nil {
		return nil, err
	}
	existed, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existed.Content = content
	return s.repo.Update(ctx, existed)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*dom.Page, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByName serves the built-in home page until one is stored.
func (s *Service) GetByName(ctx context.Context, name string) (*dom.Page, error) {
	p, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, dom.ErrPageNotFound) && name == dom.HomePage {
		return dom.DefaultHome(), nil
	}
	return p, err
}

func (s *Service) List(ctx context.Context) ([]*dom.Page, error) {
	return s.repo.List(ctx)
}
