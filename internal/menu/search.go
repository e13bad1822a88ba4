package menu

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"qrmenu/internal/domain"
)

// fold normalizes text for caseless comparison. Casers carry state, so each
// call builds its own.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Matches reports whether term occurs in any of the item's name or
// description fields in either language. A blank term matches everything.
func Matches(it domain.Item, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	needle := fold(term)
	if strings.Contains(fold(it.Name), needle) {
		return true
	}
	for _, f := range []*string{it.NameAr, it.Description, it.DescriptionAr} {
		if f != nil && strings.Contains(fold(*f), needle) {
			return true
		}
	}
	return false
}

// Filter keeps the items matching term, preserving order. It never
// returns nil.
func Filter(items []domain.Item, term string) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if Matches(it, term) {
			out = append(out, it)
		}
	}
	return out
}
