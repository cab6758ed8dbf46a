package utils

import (
	"reflect"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"":          0,
		"   ":       0,
		"500":       500,
		"1,500":     1500,
		"NGN 250":   250,
		"₦3000.50":  3000.50,
		"  1200  ":  1200,
		"-50":       -50,
		"abc":       0,
		"free":      0,
		"12.5":      12.5,
		"1,000,000": 1000000,
	}
	for in, want := range cases {
		if got := ParseAmount(in); got != want {
			t.Errorf("ParseAmount(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		0:       "0",
		500:     "500",
		1500.5:  "1500.50",
		99.99:   "99.99",
		1000000: "1000000",
	}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Errorf("FormatAmount(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Fanta, Coke, Sprite", []string{"Fanta", "Coke", "Sprite"}},
		{"Fanta\nCoke\nSprite", []string{"Fanta", "Coke", "Sprite"}},
		{"Fanta,\n Coke ,,\n", []string{"Fanta", "Coke"}},
		{"", []string{}},
		{"  ,  ,\n ", []string{}},
		{"single item with spaces", []string{"single item with spaces"}},
	}
	for _, tc := range cases {
		if got := SplitList(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitList(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}
