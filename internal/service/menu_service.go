package service

import (
	"context"

	"qrmenu/internal/menu"
	"qrmenu/internal/repository"
)

// MenuService serves the public, locale-resolved menu.
type MenuService struct {
	repo repository.RestaurantRepository
}

func NewMenuService(repo repository.RestaurantRepository) *MenuService {
	return &MenuService{repo: repo}
}

// View assembles the menu of an active restaurant. Unavailable items stay
// out of the public view.
func (s *MenuService) View(ctx context.Context, slug string, opts menu.Options) (*menu.View, error) {
	tree, err := s.repo.GetActiveRestaurantBySlug(ctx, slug, repository.TreeModePublic)
	if err != nil {
		return nil, err
	}
	v := menu.Assemble(tree, opts)
	return &v, nil
}
