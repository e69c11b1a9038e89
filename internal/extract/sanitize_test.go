package extract

import (
	"strings"
	"testing"
)

func TestSanitize_PlainTextUntouched(t *testing.T) {
	text := "Vaswani et al. (2017) showed that attention suffices.\nSecond line."
	if got := Sanitize(text); got != text {
		t.Errorf("plain text changed: %q", got)
	}
}

func TestSanitize_StripsMarkup(t *testing.T) {
	input := `<html><head><style>p{color:red}</style><script>alert(1)</script></head>
<body><p>Vaswani et al. (2017) introduced transformers.</p></body></html>`

	got := Sanitize(input)
	if strings.Contains(got, "<") || strings.Contains(got, "alert") || strings.Contains(got, "color") {
		t.Errorf("markup leaked through: %q", got)
	}
	if !strings.Contains(got, "Vaswani et al. (2017) introduced transformers.") {
		t.Errorf("visible text lost: %q", got)
	}
}

func TestSanitize_ComparisonOperatorSurvives(t *testing.T) {
	// A bare "<" in prose is not markup worth destroying the claim over;
	// the parser keeps surrounding text intact.
	got := Sanitize("The study reported p < 0.05 in all trials.")
	if !strings.Contains(got, "0.05") {
		t.Errorf("numeric content lost: %q", got)
	}
}
