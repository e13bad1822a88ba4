package menu

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FormatPrice renders amount in the given ISO 4217 currency for tag, e.g.
// "SAR 25.00". Unknown codes fall back to "<amount> <CODE>".
func FormatPrice(amount float64, code string, tag language.Tag) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%.2f %s", amount, code)
	}
	p := message.NewPrinter(tag)
	return p.Sprintf("%v %.2f", currency.Symbol(unit), amount)
}

// PublicURL is where a restaurant's menu is served; QR renderers encode it.
func PublicURL(origin, slug string) string {
	return strings.TrimRight(origin, "/") + "/menu/" + url.PathEscape(slug)
}

// Slugify lower-cases s, strips diacritics and joins the remaining ASCII
// letters and digits with single dashes. It returns "" when nothing is left.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ValidSlug reports whether s is already in Slugify's output form.
func ValidSlug(s string) bool {
	return s != "" && Slugify(s) == s
}
