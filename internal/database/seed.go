package database

import (
	"context"
	"log"
	"strings"

	"qrmenu/internal/domain"
	"qrmenu/internal/repository"
)

const DemoSlug = "demo-restaurant"

type seedItem struct {
	id, name, nameAr, desc, descAr string
	price                          float64
	order                          int
}

type seedCategory struct {
	name, nameAr string
	order        int
	items        []seedItem
}

var demoMenu = []seedCategory{
	{"Appetizers", "المقبلات", 1, []seedItem{
		{"item-hummus", "Hummus", "حمص", "Creamy chickpea dip with olive oil and spices", "غمس الحمص الكريمي مع زيت الزيتون والتوابل", 25, 1},
		{"item-falafel", "Falafel", "فلافل", "Crispy chickpea fritters served with tahini", "فطائر الحمص المقرمشة مع الطحينة", 30, 2},
	}},
	{"Main Dishes", "الأطباق الرئيسية", 2, []seedItem{
		{"item-shawarma", "Chicken Shawarma", "شاورما دجاج", "Marinated chicken wrapped in fresh bread", "دجاج متبل ملفوف بالخبز الطازج", 45, 1},
		{"item-kabsa", "Kabsa", "كبسة", "Traditional Saudi rice dish with chicken", "طبق الأرز السعودي التقليدي مع الدجاج", 65, 2},
	}},
	{"Drinks", "المشروبات", 3, []seedItem{
		{"item-tea", "Arabic Tea", "شاي عربي", "Traditional tea with mint", "شاي تقليدي بالنعناع", 10, 1},
		{"item-coffee", "Arabic Coffee", "قهوة عربية", "Traditional Arabic coffee with cardamom", "قهوة عربية تقليدية بالهيل", 15, 2},
	}},
	{"Desserts", "الحلويات", 4, []seedItem{
		{"item-kunafa", "Kunafa", "كنافة", "Sweet cheese pastry with sugar syrup", "حلوى الجبن مع شراب السكر", 35, 1},
	}},
}

// SeedDemo creates the demo restaurant with its menu. It does nothing when
// the demo slug is already taken.
func SeedDemo(ctx context.Context, store repository.Catalog) error {
	exists, err := store.SlugExists(ctx, DemoSlug)
	if err != nil {
		return err
	}
	if exists {
		log.Printf("seed: %s already present", DemoSlug)
		return nil
	}

	return store.WithTransaction(ctx, func(ctx context.Context) error {
		r := domain.Restaurant{
			Slug:     DemoSlug,
			Name:     "Demo Restaurant",
			NameAr:   ptr("مطعم تجريبي"),
			Currency: "SAR",
			IsActive: true,
		}
		if err := store.CreateRestaurant(ctx, &r); err != nil {
			return err
		}
		for _, sc := range demoMenu {
			c := domain.Category{
				ID:           r.ID + "-" + strings.ReplaceAll(strings.ToLower(sc.name), " ", "-"),
				RestaurantID: r.ID,
				Name:         sc.name,
				NameAr:       ptr(sc.nameAr),
				Order:        sc.order,
				IsActive:     true,
			}
			if err := store.CreateCategory(ctx, &c); err != nil {
				return err
			}
			for _, si := range sc.items {
				it := domain.Item{
					ID:            si.id,
					CategoryID:    c.ID,
					Name:          si.name,
					NameAr:        ptr(si.nameAr),
					Description:   ptr(si.desc),
					DescriptionAr: ptr(si.descAr),
					Price:         si.price,
					IsAvailable:   true,
					Order:         si.order,
				}
				if err := store.CreateItem(ctx, &it); err != nil {
					return err
				}
			}
		}
		log.Printf("seed: created %s", DemoSlug)
		return nil
	})
}

func ptr(s string) *string { return &s }
