package domain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Round6 rounds to the 6 decimal places the backend stores.
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func (c Coordinate) Rounded() Coordinate {
	return Coordinate{Latitude: Round6(c.Latitude), Longitude: Round6(c.Longitude)}
}

func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

func FromPoint(p orb.Point) Coordinate {
	return Coordinate{Latitude: p.Lat(), Longitude: p.Lon()}
}

func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return fmt.Errorf("%w: NaN component", ErrInvalidCoordinate)
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %f out of range", ErrInvalidCoordinate, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %f out of range", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// Bounds is a closed latitude/longitude rectangle.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

func (b Bounds) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinLon, b.MinLat}, Max: orb.Point{b.MaxLon, b.MaxLat}}
}

func (b Bounds) Contains(c Coordinate) bool {
	return b.Bound().Contains(c.Point())
}

func (b Bounds) Clamp(c Coordinate) Coordinate {
	return Coordinate{
		Latitude:  math.Min(math.Max(c.Latitude, b.MinLat), b.MaxLat),
		Longitude: math.Min(math.Max(c.Longitude, b.MinLon), b.MaxLon),
	}
}

func (b Bounds) Center() Coordinate {
	return FromPoint(b.Bound().Center())
}

type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Fix is one reading from a position sensor.
type Fix struct {
	Coordinate Coordinate
	Accuracy   float64
	Timestamp  time.Time
}

// Reason names why the device position was not used.
type Reason string

const (
	ReasonNone    Reason = ""
	ReasonDenied  Reason = "denied"
	ReasonTimeout Reason = "timeout"
	ReasonError   Reason = "error"
	ReasonStale   Reason = "stale"
)

type Resolution struct {
	Coordinate        Coordinate
	WasDeviceLocation bool
	Trace             []State
	Reason            Reason
}
