package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidProfile = errors.New("invalid profile")

// UserProfile is the user's static financial baseline.
type UserProfile struct {
	BaseSalary         float64 `json:"baseSalary"`
	OtherIncome        float64 `json:"otherIncome"`
	InitialAssets      float64 `json:"initialAssets"`
	InitialLiabilities float64 `json:"initialLiabilities"`
	Currency           string  `json:"currency"`
	InstitutionLinked  bool    `json:"institutionLinked"`
}

// DefaultProfile is the profile a first session starts with.
func DefaultProfile() UserProfile {
	return UserProfile{
		BaseSalary:         4500,
		OtherIncome:        500,
		InitialAssets:      15000,
		InitialLiabilities: 3630,
		Currency:           "USD",
	}
}

// MonthlyIncome is the profile-level income, not derived from transactions.
func (p UserProfile) MonthlyIncome() float64 {
	return p.BaseSalary + p.OtherIncome
}

// Validate checks the figures are non-negative and the currency is supported.
func (p UserProfile) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"baseSalary", p.BaseSalary},
		{"otherIncome", p.OtherIncome},
		{"initialAssets", p.InitialAssets},
		{"initialLiabilities", p.InitialLiabilities},
	}
	for _, f := range fields {
		if !finite(f.v) || f.v < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidProfile, f.name, f.v)
		}
	}
	if !IsSupportedCurrency(p.Currency) {
		return fmt.Errorf("%w: unsupported currency %q", ErrInvalidProfile, p.Currency)
	}
	return nil
}
