package quantity

import (
	"errors"
	"testing"
)

func TestOunces_ParsesNumberBeforeUnit(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1.5 oz", 1.5},
		{"0.75OZ", 0.75},
		{"2 oz tequila", 2},
		{"Top with 3oz soda", 3},
		{"1 oz lime juice", 1},
		{".5 oz simple syrup", 0.5},
		{"1. oz rum", 1},
		{"2 oz gin, 1 oz vermouth", 2},
		{"1.5\u00a0oz lime juice", 1.5},
		{"2\u202foz gin", 2},
		{"2\u2009oz gin", 2},
		{"0.5\t\u3000oz syrup", 0.5},
		{"1\voz rum", 1},
		{"1\u2028oz rum", 1},
	}
	for _, c := range cases {
		if got := Ounces(c.in); got != c.want {
			t.Fatalf("Ounces(%q)：期望 %v，实际 %v", c.in, c.want, got)
		}
	}
}

func TestOunces_NoQuantityIsZero(t *testing.T) {
	for _, in := range []string{
		"a dash of bitters",
		"mint leaves",
		"2 dashes Angostura",
		"15 ml gin",
		"",
		"ounce of prevention",
	} {
		if got := Ounces(in); got != 0 {
			t.Fatalf("Ounces(%q)：期望 0，实际 %v", in, got)
		}
	}
}

func TestExtract_InvalidNumber(t *testing.T) {
	v, err := Extract("1.2.3 oz rum")
	if v != 0 {
		t.Fatalf("期望 0，实际 %v", v)
	}
	var ue *UnparsedError
	if !errors.As(err, &ue) || ue.Kind != KindInvalidNumber {
		t.Fatalf("期望 invalid_number，实际 err=%v", err)
	}
	if ue.Raw != "1.2.3" {
		t.Fatalf("期望 raw=1.2.3，实际 %q", ue.Raw)
	}

	if got := Ounces(". oz"); got != 0 {
		t.Fatalf("期望 0，实际 %v", got)
	}
}

func TestExtract_NoMatch(t *testing.T) {
	_, err := Extract("mint leaves")
	var ue *UnparsedError
	if !errors.As(err, &ue) || ue.Kind != KindNoMatch {
		t.Fatalf("期望 no_match，实际 err=%v", err)
	}
}
