package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"qrmenu/internal/domain"
	"qrmenu/internal/menu"
	"qrmenu/internal/repository"
)

type services struct {
	store       *repository.MemoryStore
	restaurants *RestaurantService
	categories  *CategoryService
	items       *ItemService
	stats       *StatsService
	menus       *MenuService
}

func setup(t *testing.T, policy repository.DeletePolicy) services {
	t.Helper()
	store := repository.NewMemoryStore()
	return services{
		store:       store,
		restaurants: NewRestaurantService(store, "https://menu.example.com"),
		categories:  NewCategoryService(store, policy),
		items:       NewItemService(store),
		stats:       NewStatsService(store, store),
		menus:       NewMenuService(store),
	}
}

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }
func intp(i int) *int       { return &i }

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return v
}

// seedDemo builds the Appetizers example: Hummus available, Falafel not.
func seedDemo(t *testing.T, s services) (*domain.Restaurant, *domain.Category) {
	t.Helper()
	ctx := context.Background()
	r, err := s.restaurants.Create(ctx, CreateRestaurantInput{Name: "Demo Restaurant", NameAr: strp("مطعم تجريبي")})
	if err != nil {
		t.Fatalf("restaurant: %v", err)
	}
	c, err := s.categories.Create(ctx, CreateCategoryInput{RestaurantID: r.ID, Name: "Appetizers", Order: intp(1)})
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	if _, err := s.items.Create(ctx, CreateItemInput{CategoryID: c.ID, Name: "Hummus", NameAr: strp("حمص"), Price: json.RawMessage("25")}); err != nil {
		t.Fatalf("hummus: %v", err)
	}
	if _, err := s.items.Create(ctx, CreateItemInput{CategoryID: c.ID, Name: "Falafel", Price: json.RawMessage("30"), IsAvailable: boolp(false), Order: intp(1)}); err != nil {
		t.Fatalf("falafel: %v", err)
	}
	return r, c
}

func TestRestaurant_CreateDefaults(t *testing.T) {
	s := setup(t, repository.DeleteCascade)
	r, _ := seedDemo(t, s)
	if r.Slug != "demo-restaurant" || r.Currency != "SAR" || !r.IsActive {
		t.Fatalf("defaults not applied: %+v", r)
	}

	ctx := context.Background()
	if _, err := s.restaurants.Create(ctx, CreateRestaurantInput{Name: "Demo Restaurant"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate slug: want conflict, got %v", err)
	}
	if _, err := s.restaurants.Create(ctx, CreateRestaurantInput{Name: "X", Slug: "Not A Slug"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("bad slug: want validation, got %v", err)
	}
	if _, err := s.restaurants.Create(ctx, CreateRestaurantInput{Name: "مطعم"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("underivable slug: want validation, got %v", err)
	}
	if _, err := s.restaurants.Create(ctx, CreateRestaurantInput{Name: "Y", Currency: "riyal"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("bad currency: want validation, got %v", err)
	}
	usd, err := s.restaurants.Create(ctx, CreateRestaurantInput{Name: "Diner", Currency: "usd", NameAr: strp("  ")})
	if err != nil {
		t.Fatalf("diner: %v", err)
	}
	if usd.Currency != "USD" || usd.NameAr != nil {
		t.Fatalf("normalization: %+v", usd)
	}
}

func TestRestaurant_UpdateAndLink(t *testing.T) {
	ctx := context.Background()
	s := setup(t, repository.DeleteCascade)
	r, _ := seedDemo(t, s)

	patch := decode[UpdateRestaurantInput](t, `{"slug":"other"}`)
	if _, err := s.restaurants.Update(ctx, r.ID, patch); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("slug change: want validation, got %v", err)
	}
	patch = decode[UpdateRestaurantInput](t, `{"name":null}`)
	if _, err := s.restaurants.Update(ctx, r.ID, patch); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("null name: want validation, got %v", err)
	}

	link, err := s.restaurants.Link(ctx, "demo-restaurant")
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if link.URL != "https://menu.example.com/menu/demo-restaurant" {
		t.Fatalf("url: %s", link.URL)
	}

	patch = decode[UpdateRestaurantInput](t, `{"isActive":false,"nameAr":null}`)
	got, err := s.restaurants.Update(ctx, r.ID, patch)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if got.IsActive || got.NameAr != nil || got.Name != "Demo Restaurant" {
		t.Fatalf("patch result: %+v", got)
	}
	if _, err := s.restaurants.GetBySlug(ctx, "demo-restaurant", false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("inactive lookup: want not found, got %v", err)
	}
	if _, err := s.restaurants.Link(ctx, "demo-restaurant"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("inactive link: want not found, got %v", err)
	}
}

func TestRestaurant_PublicVersusPreview(t *testing.T) {
	ctx := context.Background()
	s := setup(t, repository.DeleteCascade)
	seedDemo(t, s)

	pub, err := s.restaurants.GetBySlug(ctx, "demo-restaurant", false)
	if err != nil {
		t.Fatalf("public: %v", err)
	}
	if items := pub.Categories[0].Items; len(items) != 1 || items[0].Name != "Hummus" {
		t.Fatalf("public items: %+v", items)
	}
	pre, err := s.restaurants.GetBySlug(ctx, "demo-restaurant", true)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(pre.Categories[0].Items) != 2 {
		t.Fatalf("preview items: %+v", pre.Categories[0].Items)
	}
}

func TestCategory_Validation(t *testing.T) {
	ctx := context.Background()
	s := setup(t, repository.DeleteCascade)
	r, _ := seedDemo(t, s)

	if _, err := s.categories.Create(ctx, CreateCategoryInput{Name: "No owner"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing restaurantId: %v", err)
	}
	if _, err := s.categories.Create(ctx, CreateCategoryInput{RestaurantID: r.ID, Name: "  "}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank name: %v", err)
	}
	if _, err := s.categories.Create(ctx, CreateCategoryInput{RestaurantID: r.ID, Name: "Neg", Order: intp(-1)}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("negative order: %v", err)
	}
	if _, err := s.categories.Create(ctx, CreateCategoryInput{RestaurantID: "ghost", Name: "Ghost"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing restaurant: %v", err)
	}

	c, err := s.categories.Create(ctx, CreateCategoryInput{RestaurantID: r.ID, Name: "Drinks", NameAr: strp("")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.NameAr != nil || c.Order != 0 || !c.IsActive {
		t.Fatalf("defaults: %+v", c)
	}
	list, err := s.categories.List(ctx, r.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v %+v", err, list)
	}
	if list[0].Name != "Drinks" || list[1].ItemCount != 2 {
		t.Fatalf("list order/counts: %+v", list)
	}

	up, err := s.categories.Update(ctx, c.ID, decode[UpdateCategoryInput](t, `{"order":5,"nameAr":"المشروبات"}`))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if up.Order != 5 || up.NameAr == nil || up.Name != "Drinks" {
		t.Fatalf("update result: %+v", up)
	}
	if _, err := s.categories.Update(ctx, c.ID, decode[UpdateCategoryInput](t, `{"order":-2}`)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("negative order patch: %v", err)
	}
}

func TestCategory_DeleteThenGet(t *testing.T) {
	ctx := context.Background()
	s := setup(t, repository.DeleteCascade)
	_, c := seedDemo(t, s)
	if err := s.categories.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.categories.Get(ctx, c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
	if err := s.categories.Delete(ctx, c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("delete twice: %v", err)
	}
}

func TestCategory_RestrictPolicy(t *testing.T) {
	ctx := context.Background()
	s := setup(t, repository.DeleteRestrict)
	_, c := seedDemo(t, s)
	if err := s.categories.Delete(ctx, c.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("restrict: want conflict, got %v", err)
	}
	if _, err := s.categories.Get(ctx, c.ID); err != nil {
		t.Fatalf("category must survive: %v", err)
	}
}

func TestItem_CreateValidation(t *testing.T) {
	ctx := context.Background()
	s := setup(t, repository.DeleteCascade)
	_, c := seedDemo(t, s)

	before, _ := s.store.CountItems(ctx, false)
	if _, err := s.items.Create(ctx, CreateItemInput{CategoryID: c.ID, Name: "Free?"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing price: %v", err)
	}
	if after, _ := s.store.CountItems(ctx, false); after != before {
		t.Fatalf("invalid create persisted a record")
	}
	for _, raw := range []string{`null`, `"abc"`, `-1`, `true`, `"NaN"`, `"0x1p4"`, `"1_000"`, `1e9`, `99999999.999`} {
		if _, err := s.items.Create(ctx, CreateItemInput{CategoryID: c.ID, Name: "Bad", Price: json.RawMessage(raw)}); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("price %s: want validation, got %v", raw, err)
		}
	}
	if _, err := s.items.Create(ctx, CreateItemInput{Name: "Orphan", Price: json.RawMessage("1")}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing categoryId: %v", err)
	}
	if _, err := s.items.Create(ctx, CreateItemInput{CategoryID: "ghost", Name: "Orphan", Price: json.RawMessage("1")}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing category: %v", err)
	}

	water, err := s.items.Create(ctx, CreateItemInput{CategoryID: c.ID, Name: "Water", Price: json.RawMessage("0")})
	if err != nil {
		t.Fatalf("zero price must be valid: %v", err)
	}
	if water.Price != 0 || !water.IsAvailable {
		t.Fatalf("water: %+v", water)
	}
	juice, err := s.items.Create(ctx, CreateItemInput{CategoryID: c.ID, Name: "Juice", Price: json.RawMessage(`" 12.499 "`), Description: strp("")})
	if err != nil {
		t.Fatalf("string price: %v", err)
	}
	if juice.Price != 12.5 || juice.Description != nil {
		t.Fatalf("juice: %+v", juice)
	}
}

func TestItem_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	s := setup(t, repository.DeleteCascade)
	r, c := seedDemo(t, s)
	list, _ := s.items.List(ctx, c.ID)
	hummus := list[0]

	// omitted keys stay, explicit null clears, empty string clears
	got, err := s.items.Update(ctx, hummus.ID, decode[UpdateItemInput](t, `{"price":"27","nameAr":null,"description":""}`))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Price != 27 || got.NameAr != nil || got.Description != nil || got.Name != "Hummus" || !got.IsAvailable {
		t.Fatalf("update result: %+v", got)
	}

	for _, body := range []string{`{"price":null}`, `{"name":""}`, `{"isAvailable":null}`, `{"categoryId":null}`} {
		if _, err := s.items.Update(ctx, hummus.ID, decode[UpdateItemInput](t, body)); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: want validation, got %v", body, err)
		}
	}

	other, _ := s.categories.Create(ctx, CreateCategoryInput{RestaurantID: r.ID, Name: "Mains"})
	moved, err := s.items.Update(ctx, hummus.ID, decode[UpdateItemInput](t, `{"categoryId":"`+other.ID+`"}`))
	if err != nil || moved.CategoryID != other.ID {
		t.Fatalf("move: %v %+v", err, moved)
	}
	if _, err := s.items.Update(ctx, "missing", UpdateItemInput{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing item: %v", err)
	}

	full, err := s.items.Get(ctx, hummus.ID)
	if err != nil || full.Category.Name != "Mains" {
		t.Fatalf("get joined: %v %+v", err, full)
	}
	if err := s.items.Delete(ctx, hummus.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.items.Delete(ctx, hummus.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("delete twice: %v", err)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := setup(t, repository.DeleteCascade)
	seedDemo(t, s)
	st, err := s.stats.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalItems != 2 || st.TotalCategories != 1 || st.ActiveItems != 1 {
		t.Fatalf("stats: %+v", st)
	}
}

func TestMenu_View(t *testing.T) {
	ctx := context.Background()
	s := setup(t, repository.DeleteCascade)
	seedDemo(t, s)

	v, err := s.menus.View(ctx, "demo-restaurant", menu.Options{Locale: "ar", Search: "حمص"})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if v.Restaurant.Name != "مطعم تجريبي" || len(v.All) != 1 || v.All[0].Name != "حمص" {
		t.Fatalf("view: %+v", v)
	}
	if _, err := s.menus.View(ctx, "nope", menu.Options{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing: %v", err)
	}
}
