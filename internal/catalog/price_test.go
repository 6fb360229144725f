package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "100", want: "HK$100"},
		{raw: "100.0", want: "HK$100"},
		{raw: "99.5", want: "HK$100"},
		{raw: "99.49", want: "HK$99"},
		{raw: "0.5", want: "HK$1"},
		{raw: "1234.5", want: "HK$1,235"},
		{raw: "1234567", want: "HK$1,234,567"},
		{raw: "HK$1,280.00", want: "HK$1,280"},
		{raw: " 388.00 HKD ", want: "HK$388"},
		{raw: "0", want: "HK$0"},
		{raw: "999999999999999", want: "HK$999,999,999,999,999"},
	}

	for _, tt := range tests {
		got, err := FormatPrice(tt.raw)
		if err != nil {
			t.Fatalf("FormatPrice(%q) unexpected error: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Errorf("FormatPrice(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFormatPrice_Invalid(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "N/A", "-", ".", "1.2.3", "100000000000000000000", "-1000000000000000"} {
		if _, err := FormatPrice(raw); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("FormatPrice(%q) error = %v, want ErrInvalidAmount", raw, err)
		}
	}
}

func TestFormatAmount_Negative(t *testing.T) {
	t.Parallel()

	if got := FormatAmount(decimal.RequireFromString("-1500.5")); got != "-HK$1,501" {
		t.Fatalf("FormatAmount(-1500.5) = %q", got)
	}
}

func TestParseAmount_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"12", "1,999", "250000"} {
		formatted, err := FormatPrice(raw)
		if err != nil {
			t.Fatalf("FormatPrice(%q): %v", raw, err)
		}
		parsed, err := ParseAmount(formatted)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", formatted, err)
		}
		again := FormatAmount(parsed)
		if again != formatted {
			t.Errorf("round trip of %q: %q != %q", raw, again, formatted)
		}
	}
}
