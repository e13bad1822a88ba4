package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Restaurant is a tenant of the catalog; Slug is its public lookup key.
type Restaurant struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	Slug      string    `json:"slug" gorm:"size:128;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	NameAr    *string   `json:"nameAr"`
	Currency  string    `json:"currency" gorm:"size:3;not null"`
	Logo      *string   `json:"logo"`
	IsActive  bool      `json:"isActive" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Category groups items of one restaurant. Order is a display rank only.
type Category struct {
	ID           string      `json:"id" gorm:"primaryKey;size:64"`
	RestaurantID string      `json:"restaurantId" gorm:"size:64;not null;index"`
	Owner        *Restaurant `json:"-" gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Name         string      `json:"name" gorm:"not null"`
	NameAr       *string     `json:"nameAr"`
	Order        int         `json:"order" gorm:"column:sort_order;not null;default:0"`
	IsActive     bool        `json:"isActive" gorm:"not null"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Item is a menu entry. IsAvailable gates purchase eligibility, not existence.
type Item struct {
	ID            string    `json:"id" gorm:"primaryKey;size:64"`
	CategoryID    string    `json:"categoryId" gorm:"size:64;not null;index"`
	Owner         *Category `json:"-" gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Name          string    `json:"name" gorm:"not null"`
	NameAr        *string   `json:"nameAr"`
	Description   *string   `json:"description"`
	DescriptionAr *string   `json:"descriptionAr"`
	Price         float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	Image         *string   `json:"image"`
	IsAvailable   bool      `json:"isAvailable" gorm:"not null;index"`
	Order         int       `json:"order" gorm:"column:sort_order;not null;default:0"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (r *Restaurant) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (i *Item) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// CategoryRef is the minimal category identity shown next to an item.
type CategoryRef struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	NameAr *string `json:"nameAr"`
}

// CategoryListing is a category row of the admin list with its item count.
type CategoryListing struct {
	Category
	ItemCount int64 `json:"itemCount"`
}

// ItemListing is an item row joined with its owning category.
type ItemListing struct {
	Item
	Category CategoryRef `json:"category"`
}

// CategoryTree is an active category with its items in display order.
type CategoryTree struct {
	Category
	Items []Item `json:"items"`
}

// RestaurantTree is a restaurant with its active categories.
type RestaurantTree struct {
	Restaurant
	Categories []CategoryTree `json:"categories"`
}

// Stats are the admin dashboard counters.
type Stats struct {
	TotalItems      int64 `json:"totalItems"`
	TotalCategories int64 `json:"totalCategories"`
	ActiveItems     int64 `json:"activeItems"`
}

// RestaurantPatch lists the restaurant columns to overwrite.
type RestaurantPatch struct {
	Name     Field[string]
	NameAr   Field[string]
	Currency Field[string]
	Logo     Field[string]
	IsActive Field[bool]
}

// CategoryPatch lists the category columns to overwrite.
type CategoryPatch struct {
	Name     Field[string]
	NameAr   Field[string]
	Order    Field[int]
	IsActive Field[bool]
}

// ItemPatch lists the item columns to overwrite.
type ItemPatch struct {
	CategoryID    Field[string]
	Name          Field[string]
	NameAr        Field[string]
	Description   Field[string]
	DescriptionAr Field[string]
	Price         Field[float64]
	Image         Field[string]
	IsAvailable   Field[bool]
	Order         Field[int]
}
