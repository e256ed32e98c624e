package codec

import (
	"math"
	"testing"
)

func TestParseInteger(t *testing.T) {
	ok := map[string]int64{"42": 42, " -7 ": -7, "+3": 3, "007": 7}
	for in, want := range ok {
		got, err := ParseInteger(in)
		if err != nil || got != want {
			t.Fatalf("ParseInteger(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"", "1.5", "1e3", "abc", "99999999999999999999"} {
		if _, err := ParseInteger(in); err == nil {
			t.Fatalf("ParseInteger(%q) expected error", in)
		}
	}
}

func TestParseFloat(t *testing.T) {
	ok := map[string]float64{"1.5": 1.5, " -0.25 ": -0.25, ".5": 0.5, "3.": 3, "1e3": 1000, "2.5E-1": 0.25}
	for in, want := range ok {
		got, err := ParseFloat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFloat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, in := range []string{"", "nan", "inf", "1,5", "1.2.3", "0x10"} {
		if _, err := ParseFloat(in); err == nil {
			t.Fatalf("ParseFloat(%q) expected error", in)
		}
	}
}

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{7.5: "7.5", 3: "3", -0.001: "-0.001", 1e21: "1000000000000000000000"}
	for in, want := range cases {
		if got := FormatFloat(in); got != want {
			t.Fatalf("FormatFloat(%v) = %q, want %q", in, got, want)
		}
	}
	if got := FormatFloat(math.NaN()); got != "" {
		t.Fatalf("NaN should render empty, got %q", got)
	}
}

func TestFloatCodec_KeepsFloatness(t *testing.T) {
	c := Float()
	for in, want := range map[float64]string{0: "0.0", 3: "3.0", 7.5: "7.5", -2: "-2.0"} {
		got := c.Encode(in)
		if got != want {
			t.Fatalf("Encode(%v) = %q, want %q", in, got, want)
		}
		back, err := c.Decode(got)
		if err != nil || back != in {
			t.Fatalf("Decode(%q) = %v, %v", got, back, err)
		}
		if _, err := ParseInteger(got); err == nil {
			t.Fatalf("%q must not parse as an integer", got)
		}
	}
}
