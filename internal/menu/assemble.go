package menu

import (
	"strings"

	"golang.org/x/text/language"

	"qrmenu/internal/domain"
)

// View is the locale-resolved menu handed to the public viewer.
type View struct {
	Restaurant RestaurantView `json:"restaurant"`
	Locale     string         `json:"locale"`
	Search     string         `json:"search"`
	All        []ItemView     `json:"all"`
	Categories []CategoryView `json:"categories"`
}

type RestaurantView struct {
	ID       string  `json:"id"`
	Slug     string  `json:"slug"`
	Name     string  `json:"name"`
	Logo     *string `json:"logo"`
	Currency string  `json:"currency"`
}

// CategoryView is one tab. Items may be empty after filtering.
type CategoryView struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Items []ItemView `json:"items"`
}

type ItemView struct {
	ID          string  `json:"id"`
	CategoryID  string  `json:"categoryId"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	PriceLabel  string  `json:"priceLabel"`
	Image       *string `json:"image"`
	IsAvailable bool    `json:"isAvailable"`
}

// Options select the display locale and the search term.
type Options struct {
	Locale string
	Search string
}

// Assemble builds the view for tree. The "all" list follows category order
// then item order; every category appears even when nothing in it matches.
func Assemble(tree *domain.RestaurantTree, opts Options) View {
	locale := opts.Locale
	if locale == "" {
		locale = LocaleEnglish
	}
	tag := language.Make(locale)
	r := tree.Restaurant

	v := View{
		Restaurant: RestaurantView{
			ID:       r.ID,
			Slug:     r.Slug,
			Name:     ResolveDisplay(r.Name, r.NameAr, locale, LocaleArabic),
			Logo:     r.Logo,
			Currency: r.Currency,
		},
		Locale:     locale,
		Search:     strings.TrimSpace(opts.Search),
		All:        []ItemView{},
		Categories: make([]CategoryView, 0, len(tree.Categories)),
	}

	for _, c := range tree.Categories {
		cv := CategoryView{
			ID:    c.ID,
			Name:  ResolveDisplay(c.Name, c.NameAr, locale, LocaleArabic),
			Items: []ItemView{},
		}
		for _, it := range Filter(c.Items, v.Search) {
			iv := ItemView{
				ID:          it.ID,
				CategoryID:  it.CategoryID,
				Name:        ResolveDisplay(it.Name, it.NameAr, locale, LocaleArabic),
				Description: resolveOptional(it.Description, it.DescriptionAr, locale),
				Price:       it.Price,
				PriceLabel:  FormatPrice(it.Price, r.Currency, tag),
				Image:       it.Image,
				IsAvailable: it.IsAvailable,
			}
			cv.Items = append(cv.Items, iv)
			v.All = append(v.All, iv)
		}
		v.Categories = append(v.Categories, cv)
	}
	return v
}

// resolveOptional applies ResolveDisplay to a pair whose primary may be
// absent. With no primary only the secondary locale shows anything.
func resolveOptional(primary, secondary *string, locale string) *string {
	if primary == nil {
		if secondary == nil || strings.TrimSpace(*secondary) == "" || !sameLanguage(locale, LocaleArabic) {
			return nil
		}
		return secondary
	}
	s := ResolveDisplay(*primary, secondary, locale, LocaleArabic)
	return &s
}
