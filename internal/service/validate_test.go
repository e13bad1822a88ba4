package service

import (
	"encoding/json"
	"errors"
	"testing"

	"qrmenu/internal/domain"
)

func TestParsePrice(t *testing.T) {
	ok := map[string]float64{
		`25`:          25,
		`0`:           0,
		`"12.5"`:      12.5,
		`" 7 "`:       7,
		`".5"`:        0.5,
		`"3."`:        3,
		`1e2`:         100,
		`99999999.99`: 99999999.99,
		`"+4.25"`:     4.25,
	}
	for raw, want := range ok {
		got, err := parsePrice(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		if got != want {
			t.Fatalf("%s: want %v, got %v", raw, want, got)
		}
	}

	bad := []string{``, `null`, `"0x1p4"`, `"0X10"`, `"1_000"`, `"0b101"`, `"Inf"`, `"1e"`, `"."`, `"12abc"`, `-0.5`, `1e8`, `"100000000"`}
	for _, raw := range bad {
		if _, err := parsePrice(json.RawMessage(raw)); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%q: want validation error, got %v", raw, err)
		}
	}
}
