package match

import "strconv"

// YearResult is the tri-state outcome of comparing two year strings.
// Callers decide how to treat YearUnknown - it is neither a match nor a
// mismatch.
type YearResult int

const (
	YearUnknown YearResult = iota // Either side lacks a parseable year
	YearMatch                     // Within one year of each other
	YearMismatch
)

// ParseYear extracts the digit characters from a free-form year string and
// parses them as an integer. Returns false when no digits are present.
func ParseYear(s string) (int, bool) {
	digits := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) == 0 {
		return 0, false
	}
	year, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, false
	}
	return year, true
}

// CompareYears compares two free-form year strings with a one-year tolerance
// for preprint vs. published-version drift.
func CompareYears(a, b string) YearResult {
	ya, okA := ParseYear(a)
	yb, okB := ParseYear(b)
	if !okA || !okB {
		return YearUnknown
	}

	diff := ya - yb
	if diff < 0 {
		diff = -diff
	}
	if diff <= 1 {
		return YearMatch
	}
	return YearMismatch
}

// IsFourDigitYear reports whether the string is exactly a well-formed
// four-digit year, the precondition for final year reconciliation.
func IsFourDigitYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
