package catalog

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySymbol prefixes every formatted amount. Only one currency is supported.
const CurrencySymbol = "HK$"

var ErrInvalidAmount = errors.New("invalid amount")

// maxAmount bounds parsed amounts so whole-dollar rounding stays within int64.
var maxAmount = decimal.New(1, 15)

// ParseAmount parses a monetary amount, ignoring currency symbols, codes and
// thousands separators.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := sanitizeAmount(raw)
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, raw)
	}
	return amount, nil
}

// FormatAmount renders amount as whole Hong Kong dollars, rounding half away
// from zero, e.g. 1234.5 -> "HK$1,235". amount must be within the range
// ParseAmount accepts.
func FormatAmount(amount decimal.Decimal) string {
	whole := amount.Round(0).IntPart()
	printer := message.NewPrinter(language.English)
	if whole < 0 {
		return "-" + CurrencySymbol + printer.Sprintf("%d", -whole)
	}
	return CurrencySymbol + printer.Sprintf("%d", whole)
}

func FormatPrice(raw string) (string, error) {
	amount, err := ParseAmount(raw)
	if err != nil {
		return "", err
	}
	return FormatAmount(amount), nil
}

func sanitizeAmount(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			b.WriteRune(r)
		case r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
