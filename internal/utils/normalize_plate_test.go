package utils

import "testing"

func TestNormalizePlate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase with spaces", "mh 12 ab 1234", "MH12AB1234"},
		{"already canonical", "MH12AB1234", "MH12AB1234"},
		{"mixed case", "Mh12aB1234", "MH12AB1234"},
		{"tabs and newlines", "mh\t12\nab 1234", "MH12AB1234"},
		{"leading and trailing space", "  MH99ZZ0000  ", "MH99ZZ0000"},
		{"empty", "", ""},
		{"garbage passes through", "???", "???"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizePlate(tc.in); got != tc.want {
				t.Errorf("NormalizePlate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizePlateIdempotent(t *testing.T) {
	inputs := []string{"mh 12 ab 1234", "KA 01 x 9", "  dl8cab  1111 "}
	for _, in := range inputs {
		once := NormalizePlate(in)
		twice := NormalizePlate(once)
		if once != twice {
			t.Errorf("NormalizePlate not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
