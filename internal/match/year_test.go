package match

import "testing"

func TestCompareYears(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want YearResult
	}{
		{"exact", "2020", "2020", YearMatch},
		{"one year drift", "2020", "2021", YearMatch},
		{"one year drift reversed", "2021", "2020", YearMatch},
		{"two years apart", "2020", "2022", YearMismatch},
		{"non-digit noise stripped", "c. 2017", "2017", YearMatch},
		{"missing left", "", "2020", YearUnknown},
		{"missing right", "2020", "", YearUnknown},
		{"no digits either side", "n.d.", "forthcoming", YearUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareYears(tt.a, tt.b); got != tt.want {
				t.Errorf("CompareYears(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestParseYear(t *testing.T) {
	if y, ok := ParseYear("2017"); !ok || y != 2017 {
		t.Errorf("ParseYear(2017) = %d, %v", y, ok)
	}
	if _, ok := ParseYear("unknown"); ok {
		t.Error("expected no parseable year in 'unknown'")
	}
}

func TestIsFourDigitYear(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"2020", true},
		{"202", false},
		{"20200", false},
		{"20a0", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsFourDigitYear(tt.input); got != tt.want {
			t.Errorf("IsFourDigitYear(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
