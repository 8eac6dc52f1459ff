package enums

import "fmt"

// TripStatus tracks the lifecycle of a traveler's announced trip.
type TripStatus string

const (
	TripStatusAnnounced     TripStatus = "announced"
	TripStatusTraveling     TripStatus = "traveling"
	TripStatusAtDestination TripStatus = "at_destination"
	TripStatusReturning     TripStatus = "returning"
	TripStatusCompleted     TripStatus = "completed"
	TripStatusCancelled     TripStatus = "cancelled"
)

var validTripStatuses = []TripStatus{
	TripStatusAnnounced,
	TripStatusTraveling,
	TripStatusAtDestination,
	TripStatusReturning,
	TripStatusCompleted,
	TripStatusCancelled,
}

// tripTransitions holds the allowed next statuses per current status.
// Completed and cancelled are terminal.
var tripTransitions = map[TripStatus][]TripStatus{
	TripStatusAnnounced:     {TripStatusTraveling, TripStatusCancelled},
	TripStatusTraveling:     {TripStatusAtDestination, TripStatusCancelled},
	TripStatusAtDestination: {TripStatusReturning, TripStatusCancelled},
	TripStatusReturning:     {TripStatusCompleted, TripStatusCancelled},
	TripStatusCompleted:     {},
	TripStatusCancelled:     {},
}

// String implements fmt.Stringer.
func (s TripStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TripStatus.
func (s TripStatus) IsValid() bool {
	for _, candidate := range validTripStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s TripStatus) IsTerminal() bool {
	next, ok := tripTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether the transition table allows moving to next.
func (s TripStatus) CanTransitionTo(next TripStatus) bool {
	for _, candidate := range tripTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseTripStatus converts raw input into a TripStatus.
func ParseTripStatus(value string) (TripStatus, error) {
	for _, candidate := range validTripStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid trip status %q", value)
}
