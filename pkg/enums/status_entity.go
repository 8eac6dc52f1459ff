package enums

import "fmt"

// StatusEntityType names the entity kinds that carry a status history.
type StatusEntityType string

const (
	StatusEntityTrip    StatusEntityType = "trip"
	StatusEntityRequest StatusEntityType = "request"
)

var validStatusEntityTypes = []StatusEntityType{
	StatusEntityTrip,
	StatusEntityRequest,
}

// String implements fmt.Stringer.
func (e StatusEntityType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known StatusEntityType.
func (e StatusEntityType) IsValid() bool {
	for _, candidate := range validStatusEntityTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseStatusEntityType converts raw input into a StatusEntityType.
func ParseStatusEntityType(value string) (StatusEntityType, error) {
	for _, candidate := range validStatusEntityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid status entity type %q", value)
}
