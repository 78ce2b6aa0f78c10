package extract

import (
	"math"
	"testing"
)

func TestPrice(t *testing.T) {
	testCases := []struct {
		name          string
		text          string
		originalPrice float64
		want          float64
		wantFound     bool
	}{
		{
			name:          "currency with decimals",
			text:          "Now only $45.50 per month for the same channels",
			originalPrice: 60,
			want:          45.50,
			wantFound:     true,
		},
		{
			name:          "currency with thousands separator",
			text:          "On sale for $1,299.99 this week",
			originalPrice: 1500,
			want:          1299.99,
			wantFound:     true,
		},
		{
			name:          "euro symbol",
			text:          "Verfügbar für €12.99",
			originalPrice: 20,
			want:          12.99,
			wantFound:     true,
		},
		{
			name:          "currency integer",
			text:          "Get it for $45 at checkout",
			originalPrice: 60,
			want:          45,
			wantFound:     true,
		},
		{
			name:          "labeled price without currency symbol",
			text:          "Price: 34.95 with free shipping",
			originalPrice: 50,
			want:          34.95,
			wantFound:     true,
		},
		{
			name:          "per period phrasing",
			text:          "Switch and pay 15/month after the first year",
			originalPrice: 30,
			want:          15,
			wantFound:     true,
		},
		{
			name:          "above guard threshold rejected",
			text:          "Premium tier at $80",
			originalPrice: 60,
			wantFound:     false,
		},
		{
			name:          "slightly above original admitted",
			text:          "Listed at $65 before coupon",
			originalPrice: 60,
			want:          65,
			wantFound:     true,
		},
		{
			name:          "skips implausible match and takes next",
			text:          "Save $500 off! Yours for $45.50",
			originalPrice: 60,
			want:          45.50,
			wantFound:     true,
		},
		{
			name:          "no price in text",
			text:          "Great quality and fast delivery",
			originalPrice: 60,
			wantFound:     false,
		},
		{
			name:          "empty text",
			text:          "",
			originalPrice: 60,
			wantFound:     false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, found := Price(tc.text, tc.originalPrice)
			if found != tc.wantFound {
				t.Fatalf("Price() found = %v, want %v", found, tc.wantFound)
			}
			if found && math.Abs(got-tc.want) > 0.001 {
				t.Errorf("Price() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPriceForCategory(t *testing.T) {
	t.Run("insurance premium phrasing", func(t *testing.T) {
		got, found := PriceForCategory("Premiums as low as 89 for full coverage", 150, "insurance")
		if !found {
			t.Fatal("expected premium price to be found")
		}
		if got != 89 {
			t.Errorf("PriceForCategory() = %v, want 89", got)
		}
	})

	t.Run("premium phrasing ignored outside insurance", func(t *testing.T) {
		if _, found := PriceForCategory("Premiums as low as 89 for full coverage", 150, "groceries"); found {
			t.Error("insurance rule should not apply to groceries")
		}
	})

	t.Run("subscription plan phrasing", func(t *testing.T) {
		got, found := PriceForCategory("Plans start at 9.99 with ads", 18, "streaming")
		if !found {
			t.Fatal("expected plan price to be found")
		}
		if got != 9.99 {
			t.Errorf("PriceForCategory() = %v, want 9.99", got)
		}
	})

	t.Run("generic rules still apply with category set", func(t *testing.T) {
		got, found := PriceForCategory("Drop to $79.99 today", 150, "insurance")
		if !found || got != 79.99 {
			t.Errorf("PriceForCategory() = (%v, %v), want (79.99, true)", got, found)
		}
	})
}
