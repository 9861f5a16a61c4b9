package domain

import "strings"

// Category is one of the fixed ledger category labels.
type Category string

const (
	CategoryHousing        Category = "Housing"
	CategoryFood           Category = "Food"
	CategoryTransportation Category = "Transportation"
	CategoryEntertainment  Category = "Entertainment"
	CategoryShopping       Category = "Shopping"
	CategoryHealthcare     Category = "Healthcare"
	CategoryUtilities      Category = "Utilities"
	CategoryIncome         Category = "Income"
	CategoryInvestment     Category = "Investment"
	CategoryOther          Category = "Other"
)

// Categories lists the closed category set in display order.
var Categories = []Category{
	CategoryHousing,
	CategoryFood,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryShopping,
	CategoryHealthcare,
	CategoryUtilities,
	CategoryIncome,
	CategoryInvestment,
	CategoryOther,
}

var categoryIndex = func() map[string]Category {
	m := make(map[string]Category, len(Categories))
	for _, c := range Categories {
		m[normalizeLabel(string(c))] = c
	}
	return m
}()

// ParseCategory maps a free-form label into the closed set.
// Matching ignores case and surrounding whitespace; anything unknown becomes Other.
func ParseCategory(label string) Category {
	if c, ok := categoryIndex[normalizeLabel(label)]; ok {
		return c
	}
	return CategoryOther
}

// IsValid reports whether c belongs to the closed set.
func (c Category) IsValid() bool {
	canonical, ok := categoryIndex[normalizeLabel(string(c))]
	return ok && canonical == c
}

// normalizeLabel normalizes a label for comparison.
func normalizeLabel(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
