package httpapi

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"qrmenu/internal/domain"
	"qrmenu/internal/repository"
	"qrmenu/internal/service"
	"qrmenu/internal/upload"
)

func init() { gin.SetMode(gin.TestMode) }

func setupServer(t *testing.T, policy repository.DeletePolicy) *Server {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewServer(Deps{
		Restaurants: service.NewRestaurantService(store, "https://menu.example.com"),
		Categories:  service.NewCategoryService(store, policy),
		Items:       service.NewItemService(store),
		Stats:       service.NewStatsService(store, store),
		Menus:       service.NewMenuService(store),
		Uploads:     upload.NewPipeline(t.TempDir(), 64<<10),
		Store:       store,
	}, Options{CORSOrigins: []string{"*"}, SlowRequest: time.Second})
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func expect(t *testing.T, w *httptest.ResponseRecorder, code int) envelope {
	t.Helper()
	if w.Code != code {
		t.Fatalf("want %d, got %d: %s", code, w.Code, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, w.Body.String())
	}
	if env.Success != (code < 400) {
		t.Fatalf("success flag %v for status %d", env.Success, code)
	}
	if code >= 400 && env.Error == "" {
		t.Fatalf("failure without error message")
	}
	return env
}

func into[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, env.Data)
	}
	return v
}

// seed creates demo-restaurant with Appetizers holding Hummus (available)
// and Falafel (unavailable).
func seed(t *testing.T, s *Server) (domain.Restaurant, domain.Category) {
	t.Helper()
	r := into[domain.Restaurant](t, expect(t, doJSON(t, s, http.MethodPost, "/api/restaurants", map[string]any{
		"name": "Demo Restaurant", "nameAr": "مطعم تجريبي",
	}), http.StatusCreated))
	c := into[domain.Category](t, expect(t, doJSON(t, s, http.MethodPost, "/api/categories", map[string]any{
		"restaurantId": r.ID, "name": "Appetizers", "nameAr": "المقبلات", "order": 1,
	}), http.StatusCreated))
	expect(t, doJSON(t, s, http.MethodPost, "/api/items", map[string]any{
		"categoryId": c.ID, "name": "Hummus", "nameAr": "حمص", "price": 25,
	}), http.StatusCreated)
	expect(t, doJSON(t, s, http.MethodPost, "/api/items", map[string]any{
		"categoryId": c.ID, "name": "Falafel", "nameAr": "فلافل", "price": "30", "isAvailable": false, "order": 1,
	}), http.StatusCreated)
	return r, c
}

func TestRestaurantFlow(t *testing.T) {
	s := setupServer(t, repository.DeleteCascade)
	r, _ := seed(t, s)
	if r.Slug != "demo-restaurant" || r.Currency != "SAR" {
		t.Fatalf("created: %+v", r)
	}

	list := into[[]domain.Restaurant](t, expect(t, doJSON(t, s, http.MethodGet, "/api/restaurants", nil), http.StatusOK))
	if len(list) != 1 {
		t.Fatalf("list: %+v", list)
	}

	pub := into[domain.RestaurantTree](t, expect(t, doJSON(t, s, http.MethodGet, "/api/restaurants/demo-restaurant", nil), http.StatusOK))
	if len(pub.Categories) != 1 || len(pub.Categories[0].Items) != 1 || pub.Categories[0].Items[0].Name != "Hummus" {
		t.Fatalf("public tree: %+v", pub)
	}
	pre := into[domain.RestaurantTree](t, expect(t, doJSON(t, s, http.MethodGet, "/api/restaurants/demo-restaurant?preview=true", nil), http.StatusOK))
	if len(pre.Categories[0].Items) != 2 {
		t.Fatalf("preview tree: %+v", pre)
	}

	link := into[service.MenuLink](t, expect(t, doJSON(t, s, http.MethodGet, "/api/restaurants/demo-restaurant/link", nil), http.StatusOK))
	if link.URL != "https://menu.example.com/menu/demo-restaurant" {
		t.Fatalf("link: %+v", link)
	}

	expect(t, doJSON(t, s, http.MethodPost, "/api/restaurants", map[string]any{"name": "Demo Restaurant"}), http.StatusConflict)
	expect(t, doJSON(t, s, http.MethodPatch, "/api/restaurants/"+r.ID, map[string]any{"slug": "x"}), http.StatusBadRequest)

	up := into[domain.Restaurant](t, expect(t, doJSON(t, s, http.MethodPatch, "/api/restaurants/"+r.ID, map[string]any{"isActive": false}), http.StatusOK))
	if up.IsActive || up.Name != "Demo Restaurant" {
		t.Fatalf("patched: %+v", up)
	}
	expect(t, doJSON(t, s, http.MethodGet, "/api/restaurants/demo-restaurant", nil), http.StatusNotFound)
	expect(t, doJSON(t, s, http.MethodGet, "/api/restaurants/demo-restaurant/link", nil), http.StatusNotFound)

	env := expect(t, doJSON(t, s, http.MethodDelete, "/api/restaurants/"+r.ID, nil), http.StatusOK)
	if env.Message == "" {
		t.Fatalf("delete should carry a message")
	}
	items := into[[]domain.ItemListing](t, expect(t, doJSON(t, s, http.MethodGet, "/api/items", nil), http.StatusOK))
	if len(items) != 0 {
		t.Fatalf("items survived restaurant delete: %+v", items)
	}
}

func TestCategoryAndItemFlow(t *testing.T) {
	s := setupServer(t, repository.DeleteCascade)
	r, c := seed(t, s)

	expect(t, doJSON(t, s, http.MethodPost, "/api/categories", map[string]any{"name": "No owner"}), http.StatusBadRequest)
	expect(t, doJSON(t, s, http.MethodPost, "/api/categories", map[string]any{"restaurantId": "ghost", "name": "Ghost"}), http.StatusNotFound)

	cats := into[[]domain.CategoryListing](t, expect(t, doJSON(t, s, http.MethodGet, "/api/categories?restaurantId="+r.ID, nil), http.StatusOK))
	if len(cats) != 1 || cats[0].ItemCount != 2 {
		t.Fatalf("categories: %+v", cats)
	}

	// price is required but zero is fine
	expect(t, doJSON(t, s, http.MethodPost, "/api/items", map[string]any{"categoryId": c.ID, "name": "Free"}), http.StatusBadRequest)
	expect(t, doJSON(t, s, http.MethodPost, "/api/items", map[string]any{"categoryId": c.ID, "name": "Bad", "price": "abc"}), http.StatusBadRequest)
	water := into[domain.Item](t, expect(t, doJSON(t, s, http.MethodPost, "/api/items", map[string]any{"categoryId": c.ID, "name": "Water", "price": 0, "order": 5}), http.StatusCreated))

	items := into[[]domain.ItemListing](t, expect(t, doJSON(t, s, http.MethodGet, "/api/items?categoryId="+c.ID, nil), http.StatusOK))
	if len(items) != 3 || items[2].ID != water.ID || items[0].Category.Name != "Appetizers" {
		t.Fatalf("items: %+v", items)
	}

	patched := into[domain.Item](t, expect(t, doJSON(t, s, http.MethodPatch, "/api/items/"+water.ID, map[string]any{"description": "Still", "price": 2}), http.StatusOK))
	if patched.Price != 2 || patched.Description == nil || patched.Name != "Water" {
		t.Fatalf("patched item: %+v", patched)
	}
	got := into[domain.ItemListing](t, expect(t, doJSON(t, s, http.MethodGet, "/api/items/"+water.ID, nil), http.StatusOK))
	if got.Category.ID != c.ID {
		t.Fatalf("item category: %+v", got.Category)
	}
	expect(t, doJSON(t, s, http.MethodPatch, "/api/items/"+water.ID, map[string]any{"name": nil}), http.StatusBadRequest)
	expect(t, doJSON(t, s, http.MethodPatch, "/api/items/missing", map[string]any{"name": "x"}), http.StatusNotFound)
	expect(t, doJSON(t, s, http.MethodDelete, "/api/items/"+water.ID, nil), http.StatusOK)
	expect(t, doJSON(t, s, http.MethodDelete, "/api/items/"+water.ID, nil), http.StatusNotFound)

	up := into[domain.Category](t, expect(t, doJSON(t, s, http.MethodPatch, "/api/categories/"+c.ID, map[string]any{"order": 9}), http.StatusOK))
	if up.Order != 9 || up.Name != "Appetizers" {
		t.Fatalf("patched category: %+v", up)
	}
	expect(t, doJSON(t, s, http.MethodDelete, "/api/categories/"+c.ID, nil), http.StatusOK)
	expect(t, doJSON(t, s, http.MethodGet, "/api/categories/"+c.ID, nil), http.StatusNotFound)
}

func TestDeleteCategory_Restrict(t *testing.T) {
	s := setupServer(t, repository.DeleteRestrict)
	_, c := seed(t, s)
	expect(t, doJSON(t, s, http.MethodDelete, "/api/categories/"+c.ID, nil), http.StatusConflict)
	expect(t, doJSON(t, s, http.MethodGet, "/api/categories/"+c.ID, nil), http.StatusOK)
}

func TestMenuView(t *testing.T) {
	s := setupServer(t, repository.DeleteCascade)
	seed(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/menu/demo-restaurant?q="+url.QueryEscape("حمص"), nil)
	req.Header.Set("Accept-Language", "ar-SA,ar;q=0.9")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	env := expect(t, w, http.StatusOK)

	var v struct {
		Locale     string `json:"locale"`
		Restaurant struct {
			Name string `json:"name"`
		} `json:"restaurant"`
		All []struct {
			Name       string `json:"name"`
			PriceLabel string `json:"priceLabel"`
		} `json:"all"`
		Categories []struct {
			Name  string            `json:"name"`
			Items []json.RawMessage `json:"items"`
		} `json:"categories"`
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if v.Locale != "ar" || v.Restaurant.Name != "مطعم تجريبي" {
		t.Fatalf("locale: %s %s", v.Locale, v.Restaurant.Name)
	}
	if len(v.All) != 1 || v.All[0].Name != "حمص" || v.All[0].PriceLabel == "" {
		t.Fatalf("all: %+v", v.All)
	}
	if len(v.Categories) != 1 || v.Categories[0].Name != "المقبلات" {
		t.Fatalf("categories: %+v", v.Categories)
	}

	en := expect(t, doJSON(t, s, http.MethodGet, "/api/menu/demo-restaurant?locale=en&q=zzz", nil), http.StatusOK)
	if !strings.Contains(string(en.Data), `"all":[]`) {
		t.Fatalf("empty search should give an explicit empty list: %s", en.Data)
	}
	expect(t, doJSON(t, s, http.MethodGet, "/api/menu/nope", nil), http.StatusNotFound)
}

func TestHealthAndStats(t *testing.T) {
	s := setupServer(t, repository.DeleteCascade)
	seed(t, s)

	h := into[map[string]any](t, expect(t, doJSON(t, s, http.MethodGet, "/api/health", nil), http.StatusOK))
	if h["status"] != "healthy" {
		t.Fatalf("health: %+v", h)
	}
	st := into[domain.Stats](t, expect(t, doJSON(t, s, http.MethodGet, "/api/stats", nil), http.StatusOK))
	if st.TotalItems != 2 || st.TotalCategories != 1 || st.ActiveItems != 1 {
		t.Fatalf("stats: %+v", st)
	}
}

func TestBadJSON(t *testing.T) {
	s := setupServer(t, repository.DeleteCascade)
	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader("{nope"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	expect(t, w, http.StatusBadRequest)
}

func multipartBody(t *testing.T, field, name string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func doUpload(t *testing.T, s *Server, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, "file", "pic.png", data)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func TestUpload(t *testing.T) {
	s := setupServer(t, repository.DeleteCascade)

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 40, 30))); err != nil {
		t.Fatal(err)
	}
	res := into[uploadResult](t, expect(t, doUpload(t, s, img.Bytes()), http.StatusCreated))
	if !strings.HasPrefix(res.URL, "/uploads/") {
		t.Fatalf("url: %s", res.URL)
	}

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, res.URL, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("stored image not served: %d", w.Code)
	}

	expect(t, doUpload(t, s, []byte("plain text, not an image")), http.StatusBadRequest)
	expect(t, doUpload(t, s, bytes.Repeat([]byte{0xFF}, 65<<10)), http.StatusRequestEntityTooLarge)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	w = httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	expect(t, w, http.StatusBadRequest)
}
