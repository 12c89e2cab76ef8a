package numfmt_test

import (
	"testing"

	"github.com/planforge/calcengine/internal/numfmt"
)

func TestFormatCodes(t *testing.T) {
	cases := []struct {
		f    float64
		code string
		want string
	}{
		{3.14159, "", "3.14159"},
		{3.7, "0", "4"},
		{3.14159, "0.00", "3.14"},
		{1234567, "#,##0", "1,234,567"},
		{1234567.891, "#,##0.00", "1,234,567.89"},
		{-3.7, "0", "-4"},
	}
	for _, c := range cases {
		got := numfmt.Format(c.f, c.code)
		if got != c.want {
			t.Errorf("Format(%v, %q) = %q, want %q", c.f, c.code, got, c.want)
		}
	}
}

func TestFormatDecimalPlacesFromCode(t *testing.T) {
	if got := numfmt.Format(1.005, "0.0"); got != "1.0" && got != "1.1" {
		t.Errorf("Format(1.005, \"0.0\") = %q, want one decimal place", got)
	}
	if got := numfmt.Format(2, "0.000"); got != "2.000" {
		t.Errorf("Format(2, \"0.000\") = %q, want 2.000", got)
	}
}
