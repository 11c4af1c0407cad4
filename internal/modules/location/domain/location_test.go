package domain

import (
	"math"
	"testing"
)

func TestRound6(t *testing.T) {
	t.Parallel()
	got := Coordinate{Latitude: -22.4567891234, Longitude: -68.9012345678}.Rounded()
	if got.Latitude != -22.456789 || got.Longitude != -68.901235 {
		t.Fatalf("unexpected rounding %+v", got)
	}
}

func TestBoundsClampAndContains(t *testing.T) {
	t.Parallel()
	b := Bounds{MinLat: -22.48, MaxLat: -22.40, MinLon: -68.95, MaxLon: -68.85}
	inside := Coordinate{Latitude: -22.45, Longitude: -68.9}
	if !b.Contains(inside) || b.Clamp(inside) != inside {
		t.Fatalf("inside point must be untouched")
	}
	clamped := b.Clamp(Coordinate{Latitude: -30, Longitude: -60})
	if clamped.Latitude != -22.48 || clamped.Longitude != -68.85 {
		t.Fatalf("unexpected clamp %+v", clamped)
	}
	if !b.Contains(Coordinate{Latitude: -22.40, Longitude: -68.95}) {
		t.Fatalf("bounds are closed")
	}
	c := b.Center()
	if math.Abs(c.Latitude+22.44) > 1e-9 || math.Abs(c.Longitude+68.90) > 1e-9 {
		t.Fatalf("unexpected center %+v", c)
	}
}

func TestCoordinateValidate(t *testing.T) {
	t.Parallel()
	if err := (Coordinate{Latitude: 91}).Validate(); err == nil {
		t.Fatalf("latitude above 90 must fail")
	}
	if err := (Coordinate{Longitude: math.NaN()}).Validate(); err == nil {
		t.Fatalf("NaN must fail")
	}
	if err := (Coordinate{Latitude: -22.4, Longitude: -68.9}).Validate(); err != nil {
		t.Fatalf("valid coordinate rejected: %v", err)
	}
}

func TestMachineRejectsSkippedStates(t *testing.T) {
	t.Parallel()
	m := NewMachine()
	if err := m.To(StateResolved); err == nil {
		t.Fatalf("idle cannot resolve directly")
	}
	for _, s := range []State{StateRequestingPermission, StateDenied, StateResolved} {
		if err := m.To(s); err != nil {
			t.Fatalf("to %s: %v", s, err)
		}
	}
	if err := m.To(StateAcquiring); err == nil {
		t.Fatalf("resolved is terminal")
	}
	if len(m.Trace()) != 4 {
		t.Fatalf("unexpected trace %v", m.Trace())
	}
}
