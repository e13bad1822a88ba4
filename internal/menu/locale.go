package menu

import (
	"strings"

	"golang.org/x/text/language"
)

// Locales served by the viewer. The first entry is the fallback.
const (
	LocaleEnglish = "en"
	LocaleArabic  = "ar"
)

var supported = []language.Tag{language.English, language.Arabic}

var matcher = language.NewMatcher(supported)

// ResolveDisplay picks the string shown for a bilingual pair. secondary wins
// only when requested names the secondary locale and secondary has text.
func ResolveDisplay(primary string, secondary *string, requested, secondaryLocale string) string {
	if secondary == nil || strings.TrimSpace(*secondary) == "" {
		return primary
	}
	if sameLanguage(requested, secondaryLocale) {
		return *secondary
	}
	return primary
}

func sameLanguage(a, b string) bool {
	ta, errA := language.Parse(a)
	tb, errB := language.Parse(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	ba, _ := ta.Base()
	bb, _ := tb.Base()
	return ba == bb
}

// NegotiateLocale chooses the display locale from an explicit query value,
// then the Accept-Language header, then English.
func NegotiateLocale(query, acceptLanguage string) string {
	if q := strings.TrimSpace(query); q != "" {
		if tag, err := language.Parse(q); err == nil {
			return match(tag)
		}
		return LocaleEnglish
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LocaleEnglish
	}
	return match(tags...)
}

func match(tags ...language.Tag) string {
	tag, _, conf := matcher.Match(tags...)
	if conf == language.No {
		return LocaleEnglish
	}
	base, _ := tag.Base()
	if base.String() == LocaleArabic {
		return LocaleArabic
	}
	return LocaleEnglish
}
