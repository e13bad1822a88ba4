package service

import (
	"context"
	"encoding/json"
	"strings"

	"qrmenu/internal/domain"
	"qrmenu/internal/repository"
)

type ItemService struct {
	repo repository.ItemRepository
}

func NewItemService(repo repository.ItemRepository) *ItemService {
	return &ItemService{repo: repo}
}

// CreateItemInput keeps price raw so presence can be told apart from zero
// and numeric strings can be coerced.
type CreateItemInput struct {
	CategoryID    string          `json:"categoryId"`
	Name          string          `json:"name"`
	NameAr        *string         `json:"nameAr"`
	Description   *string         `json:"description"`
	DescriptionAr *string         `json:"descriptionAr"`
	Price         json.RawMessage `json:"price" swaggertype:"number"`
	Image         *string         `json:"image"`
	IsAvailable   *bool           `json:"isAvailable"`
	Order         *int            `json:"order"`
}

type UpdateItemInput struct {
	CategoryID    domain.Field[string]          `json:"categoryId" swaggertype:"string"`
	Name          domain.Field[string]          `json:"name" swaggertype:"string"`
	NameAr        domain.Field[string]          `json:"nameAr" swaggertype:"string"`
	Description   domain.Field[string]          `json:"description" swaggertype:"string"`
	DescriptionAr domain.Field[string]          `json:"descriptionAr" swaggertype:"string"`
	Price         domain.Field[json.RawMessage] `json:"price" swaggertype:"number"`
	Image         domain.Field[string]          `json:"image" swaggertype:"string"`
	IsAvailable   domain.Field[bool]            `json:"isAvailable" swaggertype:"boolean"`
	Order         domain.Field[int]             `json:"order" swaggertype:"integer"`
}

// List returns every item when categoryID is empty.
func (s *ItemService) List(ctx context.Context, categoryID string) ([]domain.ItemListing, error) {
	return s.repo.ListItems(ctx, strings.TrimSpace(categoryID))
}

func (s *ItemService) Get(ctx context.Context, id string) (*domain.ItemListing, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return s.repo.GetItem(ctx, id)
}

func (s *ItemService) Create(ctx context.Context, in CreateItemInput) (*domain.Item, error) {
	categoryID, err := requiredText("categoryId", in.CategoryID)
	if err != nil {
		return nil, err
	}
	name, err := requiredText("name", in.Name)
	if err != nil {
		return nil, err
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}
	it := domain.Item{
		CategoryID:    categoryID,
		Name:          name,
		NameAr:        optionalText(in.NameAr),
		Description:   optionalText(in.Description),
		DescriptionAr: optionalText(in.DescriptionAr),
		Price:         price,
		Image:         optionalText(in.Image),
		IsAvailable:   in.IsAvailable == nil || *in.IsAvailable,
	}
	if in.Order != nil {
		if err := checkOrder(*in.Order); err != nil {
			return nil, err
		}
		it.Order = *in.Order
	}
	if err := s.repo.CreateItem(ctx, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *ItemService) Update(ctx context.Context, id string, in UpdateItemInput) (*domain.Item, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	categoryID, err := patchRequired("categoryId", in.CategoryID)
	if err != nil {
		return nil, err
	}
	name, err := patchRequired("name", in.Name)
	if err != nil {
		return nil, err
	}
	var price domain.Field[float64]
	if in.Price.Set {
		if in.Price.Null {
			return nil, domain.Invalid("price cannot be null")
		}
		v, err := parsePrice(in.Price.Value)
		if err != nil {
			return nil, err
		}
		price = domain.Value(v)
	}
	if err := patchOrder(in.Order); err != nil {
		return nil, err
	}
	if err := patchFlag("isAvailable", in.IsAvailable); err != nil {
		return nil, err
	}
	return s.repo.UpdateItem(ctx, id, domain.ItemPatch{
		CategoryID:    categoryID,
		Name:          name,
		NameAr:        patchOptional(in.NameAr),
		Description:   patchOptional(in.Description),
		DescriptionAr: patchOptional(in.DescriptionAr),
		Price:         price,
		Image:         patchOptional(in.Image),
		IsAvailable:   in.IsAvailable,
		Order:         in.Order,
	})
}

func (s *ItemService) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, id)
}
