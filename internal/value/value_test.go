package value_test

import (
	"testing"

	"github.com/planforge/calcengine/internal/value"
)

func TestAsNumberCoercion(t *testing.T) {
	cases := []struct {
		name string
		v    value.Value
		want float64
		ok   bool
	}{
		{"number", value.Num(3.5), 3.5, true},
		{"bool true", value.Bool(true), 1, true},
		{"bool false", value.Bool(false), 0, true},
		{"numeric text", value.Text(" 42 "), 42, true},
		{"non-numeric text", value.Text("abc"), 0, false},
		{"empty text", value.Text(""), 0, false},
		{"empty", value.Nil, 0, false},
		{"array", value.Arr([]value.Value{value.Num(1)}), 0, false},
	}
	for _, c := range cases {
		got, ok := c.v.AsNumber()
		if ok != c.ok {
			t.Errorf("%s: ok = %v, want %v", c.name, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestAsNumberDate(t *testing.T) {
	d := value.Date("1900-01-01")
	got, ok := d.AsNumber()
	if !ok {
		t.Fatal("expected date to coerce to a number")
	}
	if got != 2 {
		t.Errorf("got serial %v, want 2", got)
	}
}

func TestIsTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    value.Value
		want bool
	}{
		{"nonzero number", value.Num(1), true},
		{"zero number", value.Num(0), false},
		{"nonempty text", value.Text("x"), true},
		{"empty text", value.Text(""), false},
		{"true", value.Bool(true), true},
		{"false", value.Bool(false), false},
		{"nonempty array", value.Arr([]value.Value{value.Num(1)}), true},
		{"empty array", value.Arr(nil), false},
		{"empty value", value.Nil, false},
		{"date", value.Date("2024-01-01"), false},
	}
	for _, c := range cases {
		if got := c.v.IsTruthy(); got != c.want {
			t.Errorf("%s: IsTruthy() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestDateSerialRoundTrip(t *testing.T) {
	iso := "2024-12-31"
	d, err := value.ParseDate(iso)
	if err != nil {
		t.Fatal(err)
	}
	serial := value.DateToSerial(d)
	back := value.SerialToDate(serial)
	if back != iso {
		t.Errorf("round trip got %q, want %q", back, iso)
	}
}

func TestDateDiffSerial(t *testing.T) {
	jan1, _ := value.ParseDate("2024-01-01")
	dec31, _ := value.ParseDate("2024-12-31")
	diff := value.DateToSerial(dec31) - value.DateToSerial(jan1)
	if diff != 365 {
		t.Errorf("2024 leap-year span got %d days, want 365", diff)
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{3, "3"},
		{3.5, "3.5"},
		{0, "0"},
		{-2.25, "-2.25"},
	}
	for _, c := range cases {
		if got := value.FormatNumber(c.in); got != c.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStringRendering(t *testing.T) {
	cases := []struct {
		v    value.Value
		want string
	}{
		{value.Num(3.5), "3.5"},
		{value.Text("hi"), "hi"},
		{value.Bool(true), "TRUE"},
		{value.Bool(false), "FALSE"},
		{value.Date("2024-01-01"), "2024-01-01"},
		{value.Arr([]value.Value{value.Num(1), value.Text("x")}), "[1, x]"},
		{value.Nil, ""},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestTypeName(t *testing.T) {
	cases := []struct {
		v    value.Value
		want string
	}{
		{value.Num(1), "number"},
		{value.Text("x"), "text"},
		{value.Bool(true), "boolean"},
		{value.Date("2024-01-01"), "date"},
		{value.Arr(nil), "array"},
		{value.Nil, "empty"},
	}
	for _, c := range cases {
		if got := c.v.TypeName(); got != c.want {
			t.Errorf("TypeName() = %q, want %q", got, c.want)
		}
	}
}
