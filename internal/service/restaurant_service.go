package service

import (
	"context"
	"strings"

	"qrmenu/internal/domain"
	"qrmenu/internal/menu"
	"qrmenu/internal/repository"
)

const defaultCurrency = "SAR"

// RestaurantService holds the admin rules for restaurants and the public
// lookups by slug.
type RestaurantService struct {
	repo   repository.RestaurantRepository
	origin string
}

func NewRestaurantService(repo repository.RestaurantRepository, publicOrigin string) *RestaurantService {
	return &RestaurantService{repo: repo, origin: publicOrigin}
}

type CreateRestaurantInput struct {
	Name     string  `json:"name"`
	NameAr   *string `json:"nameAr"`
	Slug     string  `json:"slug"`
	Currency string  `json:"currency"`
	Logo     *string `json:"logo"`
	IsActive *bool   `json:"isActive"`
}

// UpdateRestaurantInput carries only the keys present in the request. Slug
// is decoded so it can be refused.
type UpdateRestaurantInput struct {
	Slug     domain.Field[string] `json:"slug" swaggertype:"string"`
	Name     domain.Field[string] `json:"name" swaggertype:"string"`
	NameAr   domain.Field[string] `json:"nameAr" swaggertype:"string"`
	Currency domain.Field[string] `json:"currency" swaggertype:"string"`
	Logo     domain.Field[string] `json:"logo" swaggertype:"string"`
	IsActive domain.Field[bool]   `json:"isActive" swaggertype:"boolean"`
}

// MenuLink is what a QR renderer needs for one restaurant.
type MenuLink struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

func (s *RestaurantService) List(ctx context.Context) ([]domain.Restaurant, error) {
	return s.repo.ListActiveRestaurants(ctx)
}

// GetBySlug returns the public tree, or every item when preview is set.
func (s *RestaurantService) GetBySlug(ctx context.Context, slug string, preview bool) (*domain.RestaurantTree, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, domain.Invalid("slug is required")
	}
	mode := repository.TreeModePublic
	if preview {
		mode = repository.TreeModeAdmin
	}
	return s.repo.GetActiveRestaurantBySlug(ctx, slug, mode)
}

func (s *RestaurantService) Link(ctx context.Context, slug string) (*MenuLink, error) {
	tree, err := s.GetBySlug(ctx, slug, false)
	if err != nil {
		return nil, err
	}
	return &MenuLink{Slug: tree.Slug, URL: menu.PublicURL(s.origin, tree.Slug)}, nil
}

func (s *RestaurantService) Create(ctx context.Context, in CreateRestaurantInput) (*domain.Restaurant, error) {
	name, err := requiredText("name", in.Name)
	if err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		if slug = menu.Slugify(name); slug == "" {
			return nil, domain.Invalid("slug is required when the name has no latin letters or digits")
		}
	} else if !menu.ValidSlug(slug) {
		return nil, domain.Invalid("slug must be lowercase letters, digits and single dashes")
	}

	cur := strings.ToUpper(strings.TrimSpace(in.Currency))
	if cur == "" {
		cur = defaultCurrency
	}
	if !isCurrencyCode(cur) {
		return nil, domain.Invalid("currency must be a three-letter code")
	}

	exists, err := s.repo.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Conflict("slug %q is already in use", slug)
	}

	r := domain.Restaurant{
		Slug:     slug,
		Name:     name,
		NameAr:   optionalText(in.NameAr),
		Currency: cur,
		Logo:     optionalText(in.Logo),
		IsActive: in.IsActive == nil || *in.IsActive,
	}
	if err := s.repo.CreateRestaurant(ctx, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RestaurantService) Update(ctx context.Context, id string, in UpdateRestaurantInput) (*domain.Restaurant, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if in.Slug.Set {
		return nil, domain.Invalid("slug cannot be changed")
	}
	name, err := patchRequired("name", in.Name)
	if err != nil {
		return nil, err
	}
	cur := in.Currency
	if cur.Set {
		if cur.Null {
			return nil, domain.Invalid("currency cannot be empty")
		}
		cur = domain.Value(strings.ToUpper(strings.TrimSpace(cur.Value)))
		if !isCurrencyCode(cur.Value) {
			return nil, domain.Invalid("currency must be a three-letter code")
		}
	}
	if err := patchFlag("isActive", in.IsActive); err != nil {
		return nil, err
	}
	return s.repo.UpdateRestaurant(ctx, id, domain.RestaurantPatch{
		Name:     name,
		NameAr:   patchOptional(in.NameAr),
		Currency: cur,
		Logo:     patchOptional(in.Logo),
		IsActive: in.IsActive,
	})
}

// Delete removes the restaurant with all of its categories and items.
func (s *RestaurantService) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return s.repo.DeleteRestaurant(ctx, id)
}
