package domain

import "fmt"

// Frequency describes how often a recurring expense is paid
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
	FrequencyPerUnit   Frequency = "per_unit"
)

// Expense is the caller-supplied recurring cost to find alternatives for.
// It is treated as immutable for the duration of a discovery run.
type Expense struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Amount      float64   `json:"amount" binding:"required"`
	Frequency   Frequency `json:"frequency"`
	Quantity    int       `json:"quantity,omitempty"` // required when Frequency is per_unit
	IsPhysical  bool      `json:"isPhysical"`
}

// Validate checks that the expense carries enough information to search with
func (e *Expense) Validate() error {
	if e == nil || e.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidExpense)
	}
	if e.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidExpense)
	}
	if e.Frequency == FrequencyPerUnit && e.Quantity <= 0 {
		return fmt.Errorf("%w: quantity is required for per-unit expenses", ErrInvalidExpense)
	}
	return nil
}

// SortPreference controls how the caller wants alternatives ordered
type SortPreference string

const (
	SortByPrice    SortPreference = "price"
	SortByDistance SortPreference = "distance"
	SortBalanced   SortPreference = "balanced"
)

// Coordinates is a WGS84 latitude/longitude pair
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Search radius bounds in kilometers
const (
	MinRadiusKm     = 1
	MaxRadiusKm     = 50
	DefaultRadiusKm = 10
)

// UserPreferences carries the caller's location and ranking preferences
type UserPreferences struct {
	RadiusKm    int            `json:"locationRadiusKm"`
	Sort        SortPreference `json:"sortPreference"`
	Coordinates Coordinates    `json:"coordinates"`
}

// Normalize clamps the radius into the supported range and defaults the sort
// preference so downstream components never see out-of-range values
func (p *UserPreferences) Normalize() {
	if p.RadiusKm <= 0 {
		p.RadiusKm = DefaultRadiusKm
	}
	if p.RadiusKm < MinRadiusKm {
		p.RadiusKm = MinRadiusKm
	}
	if p.RadiusKm > MaxRadiusKm {
		p.RadiusKm = MaxRadiusKm
	}
	switch p.Sort {
	case SortByPrice, SortByDistance, SortBalanced:
	default:
		p.Sort = SortBalanced
	}
}
