package database

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"qrmenu/internal/repository"
)

func openTestDB(t *testing.T) *repository.GormStore {
	t.Helper()
	src := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := Open("sqlite", src, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return repository.NewGormStore(db)
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x", false); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestOpenCatalog_Memory(t *testing.T) {
	store, closeFn, err := OpenCatalog(DriverMemory, "", false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeFn()
	if _, ok := store.(*repository.MemoryStore); !ok {
		t.Fatalf("want memory store, got %T", store)
	}
	if err := SeedDemo(context.Background(), store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	n, _ := store.CountCategories(context.Background())
	if n != 4 {
		t.Fatalf("want 4 categories, got %d", n)
	}
}

func TestSqliteDSN(t *testing.T) {
	if got := sqliteDSN("qrmenu.db"); got != "qrmenu.db?_pragma=foreign_keys(1)" {
		t.Fatalf("plain path: %s", got)
	}
	if got := sqliteDSN("file:x?mode=memory"); got != "file:x?mode=memory" {
		t.Fatalf("explicit params: %s", got)
	}
}

func TestSeedDemo_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t)
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := SeedDemo(ctx, store); err != nil {
			t.Fatalf("seed run %d: %v", i+1, err)
		}
	}

	tree, err := store.GetActiveRestaurantBySlug(ctx, DemoSlug, repository.TreeModePublic)
	if err != nil {
		t.Fatalf("demo tree: %v", err)
	}
	if len(tree.Categories) != 4 || tree.Categories[0].Name != "Appetizers" {
		t.Fatalf("categories: %+v", tree.Categories)
	}
	n, _ := store.CountItems(ctx, false)
	if n != 7 {
		t.Fatalf("want 7 items, got %d", n)
	}
	if first := tree.Categories[0].Items[0]; first.Name != "Hummus" || first.NameAr == nil || *first.NameAr != "حمص" {
		t.Fatalf("first item: %+v", first)
	}
}
