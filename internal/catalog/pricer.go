package catalog

// Package catalog provides discount calculation functionality.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultPrescriptionMarker = "處方糧"
	DefaultParasiteMarker     = "驅蟲除蚤產品"
)

var hundred = decimal.NewFromInt(100)

// Markers are the tag fragments that make a product eligible for the
// prescription and parasite rules.
type Markers struct {
	Prescription string `yaml:"prescription"`
	Parasite     string `yaml:"parasite"`
}

type Discount struct {
	Rule            RuleKind
	DiscountedPrice *string
	Percentage      *decimal.Decimal
}

func (d Discount) Applied() bool {
	return d.DiscountedPrice != nil && d.Percentage != nil
}

type Pricer struct {
	markers Markers
}

func NewPricer(markers Markers) *Pricer {
	if strings.TrimSpace(markers.Prescription) == "" {
		markers.Prescription = DefaultPrescriptionMarker
	}
	if strings.TrimSpace(markers.Parasite) == "" {
		markers.Parasite = DefaultParasiteMarker
	}
	return &Pricer{markers: markers}
}

func (p *Pricer) Markers() Markers {
	return p.markers
}

// MatchRule returns the first rule that applies to a product with the given
// tags: prescription, then parasite, then default.
func (p *Pricer) MatchRule(tags []string, settings DiscountSettings) RuleKind {
	if settings.Prescription.Enabled && anyTagContains(tags, p.markers.Prescription) {
		return RulePrescription
	}
	if settings.Parasite.Enabled && anyTagContains(tags, p.markers.Parasite) {
		return RuleParasite
	}
	if settings.Default.Enabled {
		return RuleDefault
	}
	return RuleNone
}

// Evaluate computes the promotional price of a variant. A matched rule with a
// zero percentage yields no discount.
func (p *Pricer) Evaluate(price string, tags []string, settings DiscountSettings) (Discount, error) {
	amount, err := ParseAmount(price)
	if err != nil {
		return Discount{}, err
	}

	rule := p.MatchRule(tags, settings)
	if rule == RuleNone {
		return Discount{}, nil
	}

	pct := settings.Rule(rule).EffectivePercentage()
	if !pct.IsPositive() {
		return Discount{Rule: rule}, nil
	}

	factor := decimal.NewFromInt(1).Sub(pct.Div(hundred))
	discounted := FormatAmount(amount.Mul(factor))
	return Discount{
		Rule:            rule,
		DiscountedPrice: &discounted,
		Percentage:      &pct,
	}, nil
}

// PriceProducts returns annotated copies of products. Variants whose price
// cannot be parsed are flagged PriceUnavailable and reported in the joined error.
func (p *Pricer) PriceProducts(products []Product, settings DiscountSettings) ([]Product, error) {
	priced := make([]Product, 0, len(products))
	var errs []error

	for _, product := range products {
		next := product.Clone()
		for i := range next.Variants {
			variant := &next.Variants[i]
			variant.DiscountedPrice = nil
			variant.DiscountPercentage = nil

			discount, err := p.Evaluate(variant.Price, next.Tags, settings)
			if err != nil {
				variant.PriceUnavailable = true
				errs = append(errs, fmt.Errorf("product %s variant %s: %w", product.ID, variant.ID, err))
				continue
			}

			variant.PriceUnavailable = false
			variant.DiscountedPrice = discount.DiscountedPrice
			variant.DiscountPercentage = discount.Percentage
		}
		priced = append(priced, next)
	}

	return priced, errors.Join(errs...)
}

func anyTagContains(tags []string, marker string) bool {
	if marker == "" {
		return false
	}
	for _, tag := range tags {
		if strings.Contains(tag, marker) {
			return true
		}
	}
	return false
}
