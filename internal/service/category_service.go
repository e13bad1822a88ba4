package service

import (
	"context"
	"strings"

	"qrmenu/internal/domain"
	"qrmenu/internal/repository"
)

// CategoryService validates category writes. The delete policy decides
// what happens to a category's items.
type CategoryService struct {
	repo   repository.CategoryRepository
	policy repository.DeletePolicy
}

func NewCategoryService(repo repository.CategoryRepository, policy repository.DeletePolicy) *CategoryService {
	if policy == "" {
		policy = repository.DeleteCascade
	}
	return &CategoryService{repo: repo, policy: policy}
}

type CreateCategoryInput struct {
	RestaurantID string  `json:"restaurantId"`
	Name         string  `json:"name"`
	NameAr       *string `json:"nameAr"`
	Order        *int    `json:"order"`
	IsActive     *bool   `json:"isActive"`
}

type UpdateCategoryInput struct {
	Name     domain.Field[string] `json:"name" swaggertype:"string"`
	NameAr   domain.Field[string] `json:"nameAr" swaggertype:"string"`
	Order    domain.Field[int]    `json:"order" swaggertype:"integer"`
	IsActive domain.Field[bool]   `json:"isActive" swaggertype:"boolean"`
}

// List returns every category when restaurantID is empty.
func (s *CategoryService) List(ctx context.Context, restaurantID string) ([]domain.CategoryListing, error) {
	return s.repo.ListCategories(ctx, strings.TrimSpace(restaurantID))
}

func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return s.repo.GetCategory(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, in CreateCategoryInput) (*domain.Category, error) {
	restaurantID, err := requiredText("restaurantId", in.RestaurantID)
	if err != nil {
		return nil, err
	}
	name, err := requiredText("name", in.Name)
	if err != nil {
		return nil, err
	}
	c := domain.Category{
		RestaurantID: restaurantID,
		Name:         name,
		NameAr:       optionalText(in.NameAr),
		IsActive:     in.IsActive == nil || *in.IsActive,
	}
	if in.Order != nil {
		if err := checkOrder(*in.Order); err != nil {
			return nil, err
		}
		c.Order = *in.Order
	}
	if err := s.repo.CreateCategory(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, in UpdateCategoryInput) (*domain.Category, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	name, err := patchRequired("name", in.Name)
	if err != nil {
		return nil, err
	}
	if err := patchOrder(in.Order); err != nil {
		return nil, err
	}
	if err := patchFlag("isActive", in.IsActive); err != nil {
		return nil, err
	}
	return s.repo.UpdateCategory(ctx, id, domain.CategoryPatch{
		Name:     name,
		NameAr:   patchOptional(in.NameAr),
		Order:    in.Order,
		IsActive: in.IsActive,
	})
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return s.repo.DeleteCategory(ctx, id, s.policy)
}
