package repository

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"qrmenu/internal/domain"
)

// MemoryStore is an in-process catalog backend. Insertion sequence stands in
// for creation time when breaking order ties.
type MemoryStore struct {
	mu          sync.RWMutex
	seq         int64
	created     map[string]int64
	restaurants map[string]domain.Restaurant
	categories  map[string]domain.Category
	items       map[string]domain.Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		created:     make(map[string]int64),
		restaurants: make(map[string]domain.Restaurant),
		categories:  make(map[string]domain.Category),
		items:       make(map[string]domain.Item),
	}
}

var _ Catalog = (*MemoryStore)(nil)

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// WithTransaction holds the write lock for fn and marks ctx so nested calls
// skip their own locking. When fn fails every write it made is undone.
func (m *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if isTx(ctx) {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	seq         int64
	created     map[string]int64
	restaurants map[string]domain.Restaurant
	categories  map[string]domain.Category
	items       map[string]domain.Item
}

// rows are stored by value, so shallow map copies are enough
func (m *MemoryStore) snapshot() memorySnapshot {
	return memorySnapshot{
		seq:         m.seq,
		created:     maps.Clone(m.created),
		restaurants: maps.Clone(m.restaurants),
		categories:  maps.Clone(m.categories),
		items:       maps.Clone(m.items),
	}
}

func (m *MemoryStore) restore(s memorySnapshot) {
	m.seq = s.seq
	m.created = s.created
	m.restaurants = s.restaurants
	m.categories = s.categories
	m.items = s.items
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) stamp(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	m.seq++
	m.created[*id] = m.seq
	now := time.Now().UTC()
	*createdAt = now
	*updatedAt = now
}

// Restaurants

func (m *MemoryStore) GetActiveRestaurantBySlug(ctx context.Context, slug string, mode TreeMode) (*domain.RestaurantTree, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	var found *domain.Restaurant
	for _, r := range m.restaurants {
		if r.Slug == slug && r.IsActive {
			cp := r
			found = &cp
			break
		}
	}
	if found == nil {
		return nil, domain.NotFound("restaurant")
	}
	tree := &domain.RestaurantTree{Restaurant: *found, Categories: []domain.CategoryTree{}}
	for _, c := range m.sortedCategories(found.ID) {
		if !c.IsActive {
			continue
		}
		items := []domain.Item{}
		for _, it := range m.sortedItems(c.ID) {
			if mode == TreeModePublic && !it.IsAvailable {
				continue
			}
			items = append(items, it)
		}
		tree.Categories = append(tree.Categories, domain.CategoryTree{Category: c, Items: items})
	}
	return tree, nil
}

func (m *MemoryStore) ListActiveRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Restaurant, 0)
	for _, r := range m.restaurants {
		if r.IsActive {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return m.created[out[i].ID] > m.created[out[j].ID] })
	return out, nil
}

func (m *MemoryStore) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	r, ok := m.restaurants[id]
	if !ok {
		return nil, domain.NotFound("restaurant")
	}
	return &r, nil
}

func (m *MemoryStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	for _, r := range m.restaurants {
		if r.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) CreateRestaurant(ctx context.Context, r *domain.Restaurant) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	for _, other := range m.restaurants {
		if other.Slug == r.Slug {
			return domain.Conflict("slug %q is already in use", r.Slug)
		}
	}
	if _, ok := m.restaurants[r.ID]; ok && r.ID != "" {
		return domain.Conflict("restaurant %q already exists", r.ID)
	}
	m.stamp(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	m.restaurants[r.ID] = *r
	return nil
}

func (m *MemoryStore) UpdateRestaurant(ctx context.Context, id string, p domain.RestaurantPatch) (*domain.Restaurant, error) {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	r, ok := m.restaurants[id]
	if !ok {
		return nil, domain.NotFound("restaurant")
	}
	setValue(&r.Name, p.Name)
	setOptional(&r.NameAr, p.NameAr)
	setValue(&r.Currency, p.Currency)
	setOptional(&r.Logo, p.Logo)
	setValue(&r.IsActive, p.IsActive)
	r.UpdatedAt = time.Now().UTC()
	m.restaurants[id] = r
	return &r, nil
}

func (m *MemoryStore) DeleteRestaurant(ctx context.Context, id string) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.restaurants[id]; !ok {
		return domain.NotFound("restaurant")
	}
	for cid, c := range m.categories {
		if c.RestaurantID == id {
			m.dropCategory(cid)
		}
	}
	delete(m.restaurants, id)
	delete(m.created, id)
	return nil
}

// Categories

func (m *MemoryStore) sortedCategories(restaurantID string) []domain.Category {
	out := make([]domain.Category, 0)
	for _, c := range m.categories {
		if restaurantID == "" || c.RestaurantID == restaurantID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return m.created[out[i].ID] < m.created[out[j].ID]
	})
	return out
}

func (m *MemoryStore) ListCategories(ctx context.Context, restaurantID string) ([]domain.CategoryListing, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	counts := make(map[string]int64)
	for _, it := range m.items {
		counts[it.CategoryID]++
	}
	cats := m.sortedCategories(restaurantID)
	out := make([]domain.CategoryListing, 0, len(cats))
	for _, c := range cats {
		out = append(out, domain.CategoryListing{Category: c, ItemCount: counts[c.ID]})
	}
	return out, nil
}

func (m *MemoryStore) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	c, ok := m.categories[id]
	if !ok {
		return nil, domain.NotFound("category")
	}
	return &c, nil
}

func (m *MemoryStore) CreateCategory(ctx context.Context, c *domain.Category) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.restaurants[c.RestaurantID]; !ok {
		return domain.NotFound("restaurant")
	}
	if _, ok := m.categories[c.ID]; ok && c.ID != "" {
		return domain.Conflict("category %q already exists", c.ID)
	}
	m.stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	m.categories[c.ID] = *c
	return nil
}

func (m *MemoryStore) UpdateCategory(ctx context.Context, id string, p domain.CategoryPatch) (*domain.Category, error) {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	c, ok := m.categories[id]
	if !ok {
		return nil, domain.NotFound("category")
	}
	setValue(&c.Name, p.Name)
	setOptional(&c.NameAr, p.NameAr)
	setValue(&c.Order, p.Order)
	setValue(&c.IsActive, p.IsActive)
	c.UpdatedAt = time.Now().UTC()
	m.categories[id] = c
	return &c, nil
}

func (m *MemoryStore) DeleteCategory(ctx context.Context, id string, policy DeletePolicy) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.categories[id]; !ok {
		return domain.NotFound("category")
	}
	if policy == DeleteRestrict {
		var n int
		for _, it := range m.items {
			if it.CategoryID == id {
				n++
			}
		}
		if n > 0 {
			return domain.Conflict("category still has %d items", n)
		}
	}
	m.dropCategory(id)
	return nil
}

// dropCategory removes a category and its items; caller holds the lock.
func (m *MemoryStore) dropCategory(id string) {
	for iid, it := range m.items {
		if it.CategoryID == id {
			delete(m.items, iid)
			delete(m.created, iid)
		}
	}
	delete(m.categories, id)
	delete(m.created, id)
}

// Items

func (m *MemoryStore) sortedItems(categoryID string) []domain.Item {
	out := make([]domain.Item, 0)
	for _, it := range m.items {
		if categoryID == "" || it.CategoryID == categoryID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return m.created[out[i].ID] < m.created[out[j].ID]
	})
	return out
}

func (m *MemoryStore) ListItems(ctx context.Context, categoryID string) ([]domain.ItemListing, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	items := m.sortedItems(categoryID)
	out := make([]domain.ItemListing, 0, len(items))
	for _, it := range items {
		out = append(out, domain.ItemListing{Item: it, Category: categoryRef(m.categories[it.CategoryID])})
	}
	return out, nil
}

func (m *MemoryStore) GetItem(ctx context.Context, id string) (*domain.ItemListing, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	it, ok := m.items[id]
	if !ok {
		return nil, domain.NotFound("item")
	}
	return &domain.ItemListing{Item: it, Category: categoryRef(m.categories[it.CategoryID])}, nil
}

func (m *MemoryStore) CreateItem(ctx context.Context, it *domain.Item) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.categories[it.CategoryID]; !ok {
		return domain.NotFound("category")
	}
	if _, ok := m.items[it.ID]; ok && it.ID != "" {
		return domain.Conflict("item %q already exists", it.ID)
	}
	m.stamp(&it.ID, &it.CreatedAt, &it.UpdatedAt)
	m.items[it.ID] = *it
	return nil
}

func (m *MemoryStore) UpdateItem(ctx context.Context, id string, p domain.ItemPatch) (*domain.Item, error) {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	it, ok := m.items[id]
	if !ok {
		return nil, domain.NotFound("item")
	}
	if p.CategoryID.Set && !p.CategoryID.Null {
		if _, ok := m.categories[p.CategoryID.Value]; !ok {
			return nil, domain.NotFound("category")
		}
	}
	setValue(&it.CategoryID, p.CategoryID)
	setValue(&it.Name, p.Name)
	setOptional(&it.NameAr, p.NameAr)
	setOptional(&it.Description, p.Description)
	setOptional(&it.DescriptionAr, p.DescriptionAr)
	setValue(&it.Price, p.Price)
	setOptional(&it.Image, p.Image)
	setValue(&it.IsAvailable, p.IsAvailable)
	setValue(&it.Order, p.Order)
	it.UpdatedAt = time.Now().UTC()
	m.items[id] = it
	return &it, nil
}

func (m *MemoryStore) DeleteItem(ctx context.Context, id string) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.items[id]; !ok {
		return domain.NotFound("item")
	}
	delete(m.items, id)
	delete(m.created, id)
	return nil
}

// Stats and housekeeping

func (m *MemoryStore) CountItems(ctx context.Context, availableOnly bool) (int64, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	var n int64
	for _, it := range m.items {
		if !availableOnly || it.IsAvailable {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) CountCategories(ctx context.Context) (int64, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	return int64(len(m.categories)), nil
}

func (m *MemoryStore) ImageRefs(ctx context.Context) ([]string, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]string, 0)
	for _, it := range m.items {
		if it.Image != nil {
			out = append(out, *it.Image)
		}
	}
	for _, r := range m.restaurants {
		if r.Logo != nil {
			out = append(out, *r.Logo)
		}
	}
	return out, nil
}

// setValue applies a present field to a required column. Null on a required
// column is rejected before it gets here.
func setValue[T any](dst *T, f domain.Field[T]) {
	if f.Set && !f.Null {
		*dst = f.Value
	}
}

func setOptional[T any](dst **T, f domain.Field[T]) {
	if f.Set {
		*dst = f.Ptr()
	}
}
