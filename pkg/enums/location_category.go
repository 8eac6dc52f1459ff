package enums

import "fmt"

// LocationCategory classifies the venues travelers announce trips to.
type LocationCategory string

const (
	LocationCategoryGrocery    LocationCategory = "grocery"
	LocationCategoryPharmacy   LocationCategory = "pharmacy"
	LocationCategoryMall       LocationCategory = "mall"
	LocationCategoryRestaurant LocationCategory = "restaurant"
	LocationCategoryHardware   LocationCategory = "hardware"
	LocationCategoryOther      LocationCategory = "other"
)

var validLocationCategories = []LocationCategory{
	LocationCategoryGrocery,
	LocationCategoryPharmacy,
	LocationCategoryMall,
	LocationCategoryRestaurant,
	LocationCategoryHardware,
	LocationCategoryOther,
}

// String implements fmt.Stringer.
func (c LocationCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known LocationCategory.
func (c LocationCategory) IsValid() bool {
	for _, candidate := range validLocationCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseLocationCategory converts raw input into a LocationCategory.
func ParseLocationCategory(value string) (LocationCategory, error) {
	for _, candidate := range validLocationCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid location category %q", value)
}
