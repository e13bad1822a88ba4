package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"qrmenu/internal/domain"
)

const (
	displayOrder = "sort_order asc, created_at asc, id asc"
	newestFirst  = "created_at desc, id desc"
)

// GormStore is the relational catalog backend.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Catalog = (*GormStore)(nil)

type gormTxKey struct{}

// conn returns the transaction carried by ctx, or a fresh session.
func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

func (s *GormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, gormTxKey{}, tx))
	})
	if err != nil && !domain.Classified(err) {
		return domain.Upstream("transaction", err)
	}
	return err
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return domain.Upstream("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return domain.Upstream("ping", err)
	}
	return nil
}

// translate maps gorm failures onto the domain error kinds. what names the
// entity for not-found and conflict messages. The message checks catch
// sqlite builds whose dialector does not translate constraint errors.
func translate(what, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case domain.Classified(err):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound(what)
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return domain.Conflict("%s already exists", what)
	case errors.Is(err, gorm.ErrForeignKeyViolated), strings.Contains(err.Error(), "FOREIGN KEY constraint failed"):
		return domain.Conflict("%s is referenced by or references a missing record", what)
	default:
		return domain.Upstream(op, err)
	}
}

func (s *GormStore) exists(ctx context.Context, model any, id string) (bool, error) {
	var n int64
	if err := s.conn(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Restaurants

func (s *GormStore) GetActiveRestaurantBySlug(ctx context.Context, slug string, mode TreeMode) (*domain.RestaurantTree, error) {
	db := s.conn(ctx)
	var r domain.Restaurant
	if err := db.Where("slug = ? AND is_active = ?", slug, true).First(&r).Error; err != nil {
		return nil, translate("restaurant", "get restaurant", err)
	}

	var cats []domain.Category
	if err := db.Where("restaurant_id = ? AND is_active = ?", r.ID, true).Order(displayOrder).Find(&cats).Error; err != nil {
		return nil, translate("category", "list categories", err)
	}

	tree := &domain.RestaurantTree{Restaurant: r, Categories: make([]domain.CategoryTree, 0, len(cats))}
	if len(cats) == 0 {
		return tree, nil
	}
	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}

	q := db.Where("category_id IN ?", ids)
	if mode == TreeModePublic {
		q = q.Where("is_available = ?", true)
	}
	var items []domain.Item
	if err := q.Order(displayOrder).Find(&items).Error; err != nil {
		return nil, translate("item", "list items", err)
	}
	byCat := make(map[string][]domain.Item, len(cats))
	for _, it := range items {
		byCat[it.CategoryID] = append(byCat[it.CategoryID], it)
	}
	for _, c := range cats {
		ci := byCat[c.ID]
		if ci == nil {
			ci = []domain.Item{}
		}
		tree.Categories = append(tree.Categories, domain.CategoryTree{Category: c, Items: ci})
	}
	return tree, nil
}

func (s *GormStore) ListActiveRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	out := make([]domain.Restaurant, 0)
	err := s.conn(ctx).Where("is_active = ?", true).Order(newestFirst).Find(&out).Error
	return out, translate("restaurant", "list restaurants", err)
}

func (s *GormStore) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
	var r domain.Restaurant
	if err := s.conn(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, translate("restaurant", "get restaurant", err)
	}
	return &r, nil
}

func (s *GormStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&domain.Restaurant{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, translate("restaurant", "check slug", err)
}

func (s *GormStore) CreateRestaurant(ctx context.Context, r *domain.Restaurant) error {
	return translate("restaurant", "create restaurant", s.conn(ctx).Create(r).Error)
}

func (s *GormStore) UpdateRestaurant(ctx context.Context, id string, p domain.RestaurantPatch) (*domain.Restaurant, error) {
	cols := map[string]any{}
	putValue(cols, "name", p.Name)
	putOptional(cols, "name_ar", p.NameAr)
	putValue(cols, "currency", p.Currency)
	putOptional(cols, "logo", p.Logo)
	putValue(cols, "is_active", p.IsActive)
	if err := s.apply(ctx, &domain.Restaurant{}, "restaurant", id, cols); err != nil {
		return nil, err
	}
	return s.GetRestaurant(ctx, id)
}

// DeleteRestaurant removes the restaurant with its categories and items in
// one transaction, independent of the driver's foreign-key support.
func (s *GormStore) DeleteRestaurant(ctx context.Context, id string) error {
	return s.WithTransaction(ctx, func(ctx context.Context) error {
		db := s.conn(ctx)
		ok, err := s.exists(ctx, &domain.Restaurant{}, id)
		if err != nil {
			return translate("restaurant", "delete restaurant", err)
		}
		if !ok {
			return domain.NotFound("restaurant")
		}
		sub := db.Model(&domain.Category{}).Select("id").Where("restaurant_id = ?", id)
		if err := db.Where("category_id IN (?)", sub).Delete(&domain.Item{}).Error; err != nil {
			return translate("item", "delete items", err)
		}
		if err := db.Where("restaurant_id = ?", id).Delete(&domain.Category{}).Error; err != nil {
			return translate("category", "delete categories", err)
		}
		return translate("restaurant", "delete restaurant", db.Delete(&domain.Restaurant{}, "id = ?", id).Error)
	})
}

// Categories

type categoryCount struct {
	CategoryID string
	N          int64
}

func (s *GormStore) ListCategories(ctx context.Context, restaurantID string) ([]domain.CategoryListing, error) {
	db := s.conn(ctx)
	q := db.Order(displayOrder)
	if restaurantID != "" {
		q = q.Where("restaurant_id = ?", restaurantID)
	}
	var cats []domain.Category
	if err := q.Find(&cats).Error; err != nil {
		return nil, translate("category", "list categories", err)
	}
	out := make([]domain.CategoryListing, 0, len(cats))
	if len(cats) == 0 {
		return out, nil
	}

	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	var rows []categoryCount
	err := db.Model(&domain.Item{}).
		Select("category_id, count(*) as n").
		Where("category_id IN ?", ids).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("item", "count items", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.N
	}
	for _, c := range cats {
		out = append(out, domain.CategoryListing{Category: c, ItemCount: counts[c.ID]})
	}
	return out, nil
}

func (s *GormStore) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	if err := s.conn(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate("category", "get category", err)
	}
	return &c, nil
}

func (s *GormStore) CreateCategory(ctx context.Context, c *domain.Category) error {
	ok, err := s.exists(ctx, &domain.Restaurant{}, c.RestaurantID)
	if err != nil {
		return translate("restaurant", "check restaurant", err)
	}
	if !ok {
		return domain.NotFound("restaurant")
	}
	return translate("category", "create category", s.conn(ctx).Create(c).Error)
}

func (s *GormStore) UpdateCategory(ctx context.Context, id string, p domain.CategoryPatch) (*domain.Category, error) {
	cols := map[string]any{}
	putValue(cols, "name", p.Name)
	putOptional(cols, "name_ar", p.NameAr)
	putValue(cols, "sort_order", p.Order)
	putValue(cols, "is_active", p.IsActive)
	if err := s.apply(ctx, &domain.Category{}, "category", id, cols); err != nil {
		return nil, err
	}
	return s.GetCategory(ctx, id)
}

func (s *GormStore) DeleteCategory(ctx context.Context, id string, policy DeletePolicy) error {
	return s.WithTransaction(ctx, func(ctx context.Context) error {
		db := s.conn(ctx)
		ok, err := s.exists(ctx, &domain.Category{}, id)
		if err != nil {
			return translate("category", "delete category", err)
		}
		if !ok {
			return domain.NotFound("category")
		}
		var n int64
		if err := db.Model(&domain.Item{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
			return translate("item", "count items", err)
		}
		if n > 0 {
			if policy == DeleteRestrict {
				return domain.Conflict("category still has %d items", n)
			}
			if err := db.Where("category_id = ?", id).Delete(&domain.Item{}).Error; err != nil {
				return translate("item", "delete items", err)
			}
		}
		return translate("category", "delete category", db.Delete(&domain.Category{}, "id = ?", id).Error)
	})
}

// Items

func (s *GormStore) withCategories(ctx context.Context, items []domain.Item) ([]domain.ItemListing, error) {
	out := make([]domain.ItemListing, 0, len(items))
	if len(items) == 0 {
		return out, nil
	}
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, it := range items {
		if !seen[it.CategoryID] {
			seen[it.CategoryID] = true
			ids = append(ids, it.CategoryID)
		}
	}
	var cats []domain.Category
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&cats).Error; err != nil {
		return nil, translate("category", "list categories", err)
	}
	byID := make(map[string]domain.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	for _, it := range items {
		out = append(out, domain.ItemListing{Item: it, Category: categoryRef(byID[it.CategoryID])})
	}
	return out, nil
}

func (s *GormStore) ListItems(ctx context.Context, categoryID string) ([]domain.ItemListing, error) {
	q := s.conn(ctx).Order(displayOrder)
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	var items []domain.Item
	if err := q.Find(&items).Error; err != nil {
		return nil, translate("item", "list items", err)
	}
	return s.withCategories(ctx, items)
}

func (s *GormStore) GetItem(ctx context.Context, id string) (*domain.ItemListing, error) {
	var it domain.Item
	if err := s.conn(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, translate("item", "get item", err)
	}
	rows, err := s.withCategories(ctx, []domain.Item{it})
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (s *GormStore) CreateItem(ctx context.Context, it *domain.Item) error {
	ok, err := s.exists(ctx, &domain.Category{}, it.CategoryID)
	if err != nil {
		return translate("category", "check category", err)
	}
	if !ok {
		return domain.NotFound("category")
	}
	return translate("item", "create item", s.conn(ctx).Create(it).Error)
}

func (s *GormStore) UpdateItem(ctx context.Context, id string, p domain.ItemPatch) (*domain.Item, error) {
	if p.CategoryID.Set && !p.CategoryID.Null {
		ok, err := s.exists(ctx, &domain.Category{}, p.CategoryID.Value)
		if err != nil {
			return nil, translate("category", "check category", err)
		}
		if !ok {
			return nil, domain.NotFound("category")
		}
	}
	cols := map[string]any{}
	putValue(cols, "category_id", p.CategoryID)
	putValue(cols, "name", p.Name)
	putOptional(cols, "name_ar", p.NameAr)
	putOptional(cols, "description", p.Description)
	putOptional(cols, "description_ar", p.DescriptionAr)
	putValue(cols, "price", p.Price)
	putOptional(cols, "image", p.Image)
	putValue(cols, "is_available", p.IsAvailable)
	putValue(cols, "sort_order", p.Order)
	if err := s.apply(ctx, &domain.Item{}, "item", id, cols); err != nil {
		return nil, err
	}
	var it domain.Item
	if err := s.conn(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, translate("item", "get item", err)
	}
	return &it, nil
}

func (s *GormStore) DeleteItem(ctx context.Context, id string) error {
	res := s.conn(ctx).Delete(&domain.Item{}, "id = ?", id)
	if res.Error != nil {
		return translate("item", "delete item", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("item")
	}
	return nil
}

// apply writes only the collected columns. An empty patch still has to
// prove the row exists.
func (s *GormStore) apply(ctx context.Context, model any, what, id string, cols map[string]any) error {
	ok, err := s.exists(ctx, model, id)
	if err != nil {
		return translate(what, "update "+what, err)
	}
	if !ok {
		return domain.NotFound(what)
	}
	if len(cols) == 0 {
		return nil
	}
	cols["updated_at"] = time.Now()
	err = s.conn(ctx).Model(model).Where("id = ?", id).Updates(cols).Error
	return translate(what, "update "+what, err)
}

// Stats and housekeeping

func (s *GormStore) CountItems(ctx context.Context, availableOnly bool) (int64, error) {
	var n int64
	q := s.conn(ctx).Model(&domain.Item{})
	if availableOnly {
		q = q.Where("is_available = ?", true)
	}
	err := q.Count(&n).Error
	return n, translate("item", "count items", err)
}

func (s *GormStore) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&domain.Category{}).Count(&n).Error
	return n, translate("category", "count categories", err)
}

func (s *GormStore) ImageRefs(ctx context.Context) ([]string, error) {
	db := s.conn(ctx)
	var images, logos []string
	if err := db.Model(&domain.Item{}).Where("image IS NOT NULL").Pluck("image", &images).Error; err != nil {
		return nil, translate("item", "list images", err)
	}
	if err := db.Model(&domain.Restaurant{}).Where("logo IS NOT NULL").Pluck("logo", &logos).Error; err != nil {
		return nil, translate("restaurant", "list logos", err)
	}
	return append(images, logos...), nil
}

func putValue[T any](cols map[string]any, column string, f domain.Field[T]) {
	if f.Set && !f.Null {
		cols[column] = f.Value
	}
}

func putOptional[T any](cols map[string]any, column string, f domain.Field[T]) {
	if f.Set {
		if f.Null {
			cols[column] = nil
		} else {
			cols[column] = f.Value
		}
	}
}
