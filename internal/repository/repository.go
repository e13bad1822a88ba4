package repository

import (
	"context"
	"fmt"

	"qrmenu/internal/domain"
)

// TreeMode selects which items a restaurant tree carries.
type TreeMode int

const (
	// TreeModePublic keeps only available items.
	TreeModePublic TreeMode = iota
	// TreeModeAdmin keeps every item regardless of availability.
	TreeModeAdmin
)

// DeletePolicy decides what happens to items when their category is deleted.
type DeletePolicy string

const (
	DeleteCascade  DeletePolicy = "cascade"
	DeleteRestrict DeletePolicy = "restrict"
)

// ParseDeletePolicy accepts "cascade" or "restrict".
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(s); p {
	case DeleteCascade, DeleteRestrict:
		return p, nil
	default:
		return "", fmt.Errorf("unknown delete policy %q", s)
	}
}

// RestaurantRepository covers restaurants and the public tree lookup.
type RestaurantRepository interface {
	GetActiveRestaurantBySlug(ctx context.Context, slug string, mode TreeMode) (*domain.RestaurantTree, error)
	ListActiveRestaurants(ctx context.Context) ([]domain.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	CreateRestaurant(ctx context.Context, r *domain.Restaurant) error
	UpdateRestaurant(ctx context.Context, id string, p domain.RestaurantPatch) (*domain.Restaurant, error)
	// DeleteRestaurant always cascades to categories and items.
	DeleteRestaurant(ctx context.Context, id string) error
}

// CategoryRepository covers categories. An empty restaurantID lists all.
type CategoryRepository interface {
	ListCategories(ctx context.Context, restaurantID string) ([]domain.CategoryListing, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, id string, p domain.CategoryPatch) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string, policy DeletePolicy) error
}

// ItemRepository covers items. An empty categoryID lists all.
type ItemRepository interface {
	ListItems(ctx context.Context, categoryID string) ([]domain.ItemListing, error)
	GetItem(ctx context.Context, id string) (*domain.ItemListing, error)
	CreateItem(ctx context.Context, it *domain.Item) error
	UpdateItem(ctx context.Context, id string, p domain.ItemPatch) (*domain.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

// StatsRepository answers the dashboard counters.
type StatsRepository interface {
	CountItems(ctx context.Context, availableOnly bool) (int64, error)
	CountCategories(ctx context.Context) (int64, error)
}

// ImageRefs lists every image URL still referenced by the catalog.
type ImageRefs interface {
	ImageRefs(ctx context.Context) ([]string, error)
}

// Pinger checks store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxManager runs fn inside one store transaction; repositories pick the
// transaction up from ctx.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Catalog is everything a store backend provides.
type Catalog interface {
	RestaurantRepository
	CategoryRepository
	ItemRepository
	StatsRepository
	ImageRefs
	Pinger
	TxManager
}

func categoryRef(c domain.Category) domain.CategoryRef {
	return domain.CategoryRef{ID: c.ID, Name: c.Name, NameAr: c.NameAr}
}
