package catalog

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func enabledRule(pct int64) DiscountRule {
	return DiscountRule{Enabled: true, Percentage: decimal.NewFromInt(pct)}
}

func TestPricer_Evaluate(t *testing.T) {
	t.Parallel()

	settings := DiscountSettings{
		Prescription: enabledRule(10),
		Parasite:     enabledRule(20),
		Default:      DiscountRule{Enabled: false, Percentage: decimal.NewFromInt(5)},
	}

	tests := []struct {
		name      string
		price     string
		tags      []string
		settings  DiscountSettings
		wantRule  RuleKind
		wantPrice string
		wantPct   int64
		wantNone  bool
		wantErr   error
	}{
		{
			name:      "prescription marker applies prescription percentage",
			price:     "100.0",
			tags:      []string{"處方糧"},
			settings:  settings,
			wantRule:  RulePrescription,
			wantPrice: "HK$90",
			wantPct:   10,
		},
		{
			name:      "prescription wins over parasite",
			price:     "100",
			tags:      []string{"處方糧", "驅蟲除蚤產品"},
			settings:  settings,
			wantRule:  RulePrescription,
			wantPrice: "HK$90",
			wantPct:   10,
		},
		{
			name:      "marker matched as substring",
			price:     "200",
			tags:      []string{"腎臟處方糧"},
			settings:  settings,
			wantRule:  RulePrescription,
			wantPrice: "HK$180",
			wantPct:   10,
		},
		{
			name:      "parasite marker",
			price:     "200.00",
			tags:      []string{"Dog 狗", "驅蟲除蚤產品"},
			settings:  settings,
			wantRule:  RuleParasite,
			wantPrice: "HK$160",
			wantPct:   20,
		},
		{
			name:     "disabled default yields nothing",
			price:    "50",
			tags:     nil,
			settings: settings,
			wantNone: true,
		},
		{
			name:  "default applies when no marker",
			price: "1,999.00 HKD",
			tags:  []string{"Wet Food 濕糧"},
			settings: DiscountSettings{
				Prescription: enabledRule(10),
				Default:      enabledRule(15),
			},
			wantRule:  RuleDefault,
			wantPrice: "HK$1,699",
			wantPct:   15,
		},
		{
			name:  "disabled prescription falls through to default",
			price: "100",
			tags:  []string{"處方糧"},
			settings: DiscountSettings{
				Prescription: DiscountRule{Enabled: false, Percentage: decimal.NewFromInt(50)},
				Default:      enabledRule(5),
			},
			wantRule:  RuleDefault,
			wantPrice: "HK$95",
			wantPct:   5,
		},
		{
			name:  "matched rule with zero percentage yields no discount",
			price: "100",
			tags:  []string{"處方糧"},
			settings: DiscountSettings{
				Prescription: enabledRule(0),
				Default:      enabledRule(30),
			},
			wantRule: RulePrescription,
			wantNone: true,
		},
		{
			name:  "percentage above 100 is clamped",
			price: "100",
			tags:  nil,
			settings: DiscountSettings{
				Default: enabledRule(150),
			},
			wantRule:  RuleDefault,
			wantPrice: "HK$0",
			wantPct:   100,
		},
		{
			name:     "unparseable price",
			price:    "N/A",
			settings: settings,
			wantErr:  ErrInvalidAmount,
		},
	}

	pricer := NewPricer(Markers{})

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := pricer.Evaluate(tt.price, tt.tags, tt.settings)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.Rule != tt.wantRule {
				t.Fatalf("rule = %q, want %q", got.Rule, tt.wantRule)
			}
			if tt.wantNone {
				if got.DiscountedPrice != nil || got.Percentage != nil {
					t.Fatalf("expected no discount, got %+v", got)
				}
				return
			}
			if !got.Applied() {
				t.Fatalf("expected discount to be applied")
			}
			if *got.DiscountedPrice != tt.wantPrice {
				t.Fatalf("discounted price = %q, want %q", *got.DiscountedPrice, tt.wantPrice)
			}
			if !got.Percentage.Equal(decimal.NewFromInt(tt.wantPct)) {
				t.Fatalf("percentage = %s, want %d", got.Percentage, tt.wantPct)
			}
		})
	}
}

func TestPricer_EvaluateIsIdempotent(t *testing.T) {
	t.Parallel()

	pricer := NewPricer(Markers{})
	settings := DiscountSettings{Parasite: enabledRule(20)}
	tags := []string{"驅蟲除蚤產品"}

	first, err := pricer.Evaluate("388", tags, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := pricer.Evaluate("388", tags, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *first.DiscountedPrice != *second.DiscountedPrice || !first.Percentage.Equal(*second.Percentage) {
		t.Fatalf("evaluate not idempotent: %+v vs %+v", first, second)
	}
}

func TestPricer_AllRulesDisabled(t *testing.T) {
	t.Parallel()

	pricer := NewPricer(Markers{})
	settings := DiscountSettings{
		Prescription: DiscountRule{Percentage: decimal.NewFromInt(10)},
		Parasite:     DiscountRule{Percentage: decimal.NewFromInt(20)},
		Default:      DiscountRule{Percentage: decimal.NewFromInt(30)},
	}

	for _, tags := range [][]string{nil, {"處方糧"}, {"驅蟲除蚤產品"}, {"Dog 狗"}} {
		got, err := pricer.Evaluate("120", tags, settings)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.DiscountedPrice != nil || got.Percentage != nil {
			t.Fatalf("tags %v: expected no discount, got %+v", tags, got)
		}
	}
}

func TestPricer_CustomMarkers(t *testing.T) {
	t.Parallel()

	pricer := NewPricer(Markers{Prescription: "Rx"})
	if pricer.Markers().Parasite != DefaultParasiteMarker {
		t.Fatalf("expected default parasite marker, got %q", pricer.Markers().Parasite)
	}

	got := pricer.MatchRule([]string{"Rx Renal"}, DiscountSettings{Prescription: enabledRule(10)})
	if got != RulePrescription {
		t.Fatalf("expected prescription rule, got %q", got)
	}
	got = pricer.MatchRule([]string{"處方糧"}, DiscountSettings{Prescription: enabledRule(10)})
	if got != RuleNone {
		t.Fatalf("expected default marker to be replaced, got %q", got)
	}
}

func TestPricer_PriceProducts(t *testing.T) {
	t.Parallel()

	products := []Product{
		{ID: "P1", Vendor: "A", Tags: []string{"處方糧"}, Collection: "prescription-diet-cats-dogs", Variants: []Variant{{ID: "V1", Price: "100"}}},
		{ID: "P2", Vendor: "B", Tags: []string{"驅蟲除蚤產品"}, Collection: "prescription-diet-cats-dogs", Variants: []Variant{{ID: "V2", Price: "200"}}},
		{ID: "P3", Vendor: "A", Tags: []string{}, Collection: "prescription-diet-cats-dogs", Variants: []Variant{{ID: "V3", Price: "50"}}},
	}
	settings := DiscountSettings{
		Prescription: enabledRule(10),
		Parasite:     enabledRule(20),
	}

	priced, err := NewPricer(Markers{}).PriceProducts(products, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct {
		price string
		pct   int64
	}{{"HK$90", 10}, {"HK$160", 20}}
	for i, w := range want {
		variant := priced[i].Variants[0]
		if !variant.HasDiscount() {
			t.Fatalf("product %d: expected discount", i)
		}
		if *variant.DiscountedPrice != w.price || !variant.DiscountPercentage.Equal(decimal.NewFromInt(w.pct)) {
			t.Fatalf("product %d: got %s / %s", i, *variant.DiscountedPrice, variant.DiscountPercentage)
		}
	}
	if priced[2].Variants[0].DiscountedPrice != nil || priced[2].Variants[0].DiscountPercentage != nil {
		t.Fatalf("expected P3 to stay undiscounted")
	}

	if products[0].Variants[0].DiscountedPrice != nil {
		t.Fatalf("input products must not be mutated")
	}

	filtered := FilterProducts(priced, Selection{Vendors: NewSet("A"), Tags: NewSet(), PetTypes: NewSet()})
	ids := []string{}
	for _, p := range filtered {
		ids = append(ids, p.ID)
	}
	if !reflect.DeepEqual(ids, []string{"P1", "P3"}) {
		t.Fatalf("filtered ids = %v, want [P1 P3]", ids)
	}
}

func TestPricer_PriceProductsFlagsInvalidPrices(t *testing.T) {
	t.Parallel()

	products := []Product{
		{ID: "P1", Tags: []string{"處方糧"}, Variants: []Variant{{ID: "V1", Price: ""}, {ID: "V2", Price: "80"}}},
	}
	priced, err := NewPricer(Markers{}).PriceProducts(products, DiscountSettings{Prescription: enabledRule(25)})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if !priced[0].Variants[0].PriceUnavailable || priced[0].Variants[0].HasDiscount() {
		t.Fatalf("expected first variant to be flagged without discount: %+v", priced[0].Variants[0])
	}
	if priced[0].Variants[1].PriceUnavailable || *priced[0].Variants[1].DiscountedPrice != "HK$60" {
		t.Fatalf("expected second variant to be discounted: %+v", priced[0].Variants[1])
	}
}
