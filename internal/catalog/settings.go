package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type RuleKind string

const (
	RuleNone         RuleKind = ""
	RulePrescription RuleKind = "prescription"
	RuleParasite     RuleKind = "parasite"
	RuleDefault      RuleKind = "default"
)

var (
	ErrInvalidSettings = errors.New("invalid discount settings")

	maxPercentage = decimal.NewFromInt(100)
)

type DiscountRule struct {
	Enabled    bool            `json:"enabled"`
	Percentage decimal.Decimal `json:"percentage"`
}

// EffectivePercentage is the percentage to apply, or zero when the rule is disabled.
func (r DiscountRule) EffectivePercentage() decimal.Decimal {
	if !r.Enabled {
		return decimal.Zero
	}
	return ClampPercentage(r.Percentage)
}

type DiscountSettings struct {
	Prescription DiscountRule `json:"prescription"`
	Parasite     DiscountRule `json:"parasite"`
	Default      DiscountRule `json:"default"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// DefaultDiscountSettings is used when no settings were ever fetched: every rule disabled.
func DefaultDiscountSettings() DiscountSettings {
	return DiscountSettings{}
}

func (s DiscountSettings) Rule(kind RuleKind) DiscountRule {
	switch kind {
	case RulePrescription:
		return s.Prescription
	case RuleParasite:
		return s.Parasite
	case RuleDefault:
		return s.Default
	default:
		return DiscountRule{}
	}
}

func ClampPercentage(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(maxPercentage) {
		return maxPercentage
	}
	return pct
}

// MetaobjectField is one key/value pair of the discount settings record as
// stored in the commerce platform.
type MetaobjectField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ParseDiscountSettings converts metaobject fields into settings. Unknown
// keys are ignored; a record without any known key is rejected.
func ParseDiscountSettings(fields []MetaobjectField) (DiscountSettings, error) {
	settings := DefaultDiscountSettings()
	recognized := 0

	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		kind, attr, ok := strings.Cut(key, "_")
		if !ok {
			continue
		}

		var rule *DiscountRule
		switch RuleKind(kind) {
		case RulePrescription:
			rule = &settings.Prescription
		case RuleParasite:
			rule = &settings.Parasite
		case RuleDefault:
			rule = &settings.Default
		default:
			continue
		}

		switch attr {
		case "enabled":
			rule.Enabled = strings.EqualFold(strings.TrimSpace(field.Value), "true")
		case "percentage":
			pct, err := parsePercentage(field.Value)
			if err != nil {
				return DiscountSettings{}, fmt.Errorf("%w: %s: %v", ErrInvalidSettings, key, err)
			}
			rule.Percentage = pct
		default:
			continue
		}
		recognized++
	}

	if recognized == 0 {
		return DiscountSettings{}, fmt.Errorf("%w: no discount fields present", ErrInvalidSettings)
	}
	return settings, nil
}

func parsePercentage(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "%"))
	if value == "" {
		return decimal.Zero, nil
	}
	pct, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("percentage %q is not a number", value)
	}
	return ClampPercentage(pct), nil
}
