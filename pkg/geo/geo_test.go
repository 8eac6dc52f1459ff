package geo

import (
	"testing"

	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

func TestDistanceKmIdenticalPointsIsZero(t *testing.T) {
	point := types.Coordinates{Lat: 37.7749, Lng: -122.4194}
	if d := DistanceKm(point, point); d != 0 {
		t.Fatalf("expected zero distance for identical points, got %f", d)
	}
}

func TestDistanceKmIsSymmetric(t *testing.T) {
	a := types.Coordinates{Lat: 37.7749, Lng: -122.4194}
	b := types.Coordinates{Lat: 40.7128, Lng: -74.0060}

	forward := DistanceKm(a, b)
	backward := DistanceKm(b, a)
	if forward != backward {
		t.Fatalf("expected symmetric distance, got %f and %f", forward, backward)
	}
}

func TestDistanceKmKnownPair(t *testing.T) {
	// Two points in San Francisco roughly 1.5 km apart.
	a := types.Coordinates{Lat: 37.7749, Lng: -122.4194}
	b := types.Coordinates{Lat: 37.7849, Lng: -122.4094}

	d := DistanceKm(a, b)
	if d <= 1 || d >= 2 {
		t.Fatalf("expected distance between 1 and 2 km, got %f", d)
	}
}

func TestWithinRadius(t *testing.T) {
	a := types.Coordinates{Lat: 37.7749, Lng: -122.4194}
	b := types.Coordinates{Lat: 37.7849, Lng: -122.4094}

	if !WithinRadius(a, b, 2) {
		t.Fatal("expected points within 2 km radius")
	}
	if WithinRadius(a, b, 1) {
		t.Fatal("expected points outside 1 km radius")
	}
	if !WithinRadius(a, a, 0) {
		t.Fatal("expected point within zero radius of itself")
	}
}
