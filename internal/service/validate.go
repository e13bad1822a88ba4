package service

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"qrmenu/internal/domain"
)

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Invalid("id is required")
	}
	return nil
}

// requiredText trims v and rejects it when nothing is left.
func requiredText(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", domain.Invalid("%s is required", field)
	}
	return v, nil
}

// optionalText stores blank input as absent, never as "".
func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

// patchRequired lets a required column be replaced but never cleared.
func patchRequired(field string, f domain.Field[string]) (domain.Field[string], error) {
	if !f.Set {
		return f, nil
	}
	if f.Null || strings.TrimSpace(f.Value) == "" {
		return f, domain.Invalid("%s cannot be empty", field)
	}
	return domain.Value(strings.TrimSpace(f.Value)), nil
}

// patchOptional turns a blank value into an explicit clear.
func patchOptional(f domain.Field[string]) domain.Field[string] {
	if !f.Set || f.Null {
		return f
	}
	if s := strings.TrimSpace(f.Value); s != "" {
		return domain.Value(s)
	}
	return domain.Null[string]()
}

func patchFlag(field string, f domain.Field[bool]) error {
	if f.Set && f.Null {
		return domain.Invalid("%s cannot be null", field)
	}
	return nil
}

func checkOrder(order int) error {
	if order < 0 {
		return domain.Invalid("order must be zero or greater")
	}
	return nil
}

func patchOrder(f domain.Field[int]) error {
	if !f.Set {
		return nil
	}
	if f.Null {
		return domain.Invalid("order cannot be null")
	}
	return checkOrder(f.Value)
}

// maxPrice keeps amounts inside the decimal(10,2) price column.
const maxPrice = 1e8

// plain decimal notation only; ParseFloat alone would also take hex floats
// and digit separators
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// parsePrice accepts a JSON number or a numeric string and returns a
// non-negative amount rounded to cents. An absent or null price is missing,
// while 0 is a valid price.
func parsePrice(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, domain.Invalid("price is required")
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, domain.Invalid("price must be a number")
		}
		text = strings.TrimSpace(text)
	}
	if !decimalPattern.MatchString(text) {
		return 0, domain.Invalid("price must be a number")
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domain.Invalid("price must be a number")
	}
	if v < 0 {
		return 0, domain.Invalid("price must not be negative")
	}
	v = math.Round(v*100) / 100
	if v >= maxPrice {
		return 0, domain.Invalid("price must be below %.0f", maxPrice)
	}
	return v, nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
