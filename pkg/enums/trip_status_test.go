package enums

import "testing"

func TestTripStatusTransitions(t *testing.T) {
	cases := []struct {
		from    TripStatus
		to      TripStatus
		allowed bool
	}{
		{TripStatusAnnounced, TripStatusTraveling, true},
		{TripStatusAnnounced, TripStatusCancelled, true},
		{TripStatusAnnounced, TripStatusAtDestination, false},
		{TripStatusAnnounced, TripStatusCompleted, false},
		{TripStatusTraveling, TripStatusAtDestination, true},
		{TripStatusTraveling, TripStatusCancelled, true},
		{TripStatusTraveling, TripStatusAnnounced, false},
		{TripStatusAtDestination, TripStatusReturning, true},
		{TripStatusAtDestination, TripStatusCancelled, true},
		{TripStatusAtDestination, TripStatusTraveling, false},
		{TripStatusReturning, TripStatusCompleted, true},
		{TripStatusReturning, TripStatusCancelled, true},
		{TripStatusReturning, TripStatusAtDestination, false},
		{TripStatusCompleted, TripStatusCancelled, false},
		{TripStatusCancelled, TripStatusAnnounced, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestTripStatusHappyPath(t *testing.T) {
	path := []TripStatus{
		TripStatusAnnounced,
		TripStatusTraveling,
		TripStatusAtDestination,
		TripStatusReturning,
		TripStatusCompleted,
	}

	for i := 0; i < len(path)-1; i++ {
		if !path[i].CanTransitionTo(path[i+1]) {
			t.Fatalf("expected %s -> %s to be allowed", path[i], path[i+1])
		}
	}
}

func TestTripStatusTerminal(t *testing.T) {
	if !TripStatusCompleted.IsTerminal() {
		t.Error("completed should be terminal")
	}
	if !TripStatusCancelled.IsTerminal() {
		t.Error("cancelled should be terminal")
	}
	if TripStatusAnnounced.IsTerminal() {
		t.Error("announced should not be terminal")
	}
	if TripStatusReturning.IsTerminal() {
		t.Error("returning should not be terminal")
	}
}

func TestParseTripStatus(t *testing.T) {
	status, err := ParseTripStatus("at_destination")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != TripStatusAtDestination {
		t.Fatalf("expected at_destination, got %s", status)
	}

	if _, err := ParseTripStatus("en_route"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
