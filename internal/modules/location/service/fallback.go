package service

import (
	"math/rand/v2"
	"sync"

	"vecino/internal/modules/location/domain"
)

// Fallback draws uniform points inside a bounding box.
type Fallback struct {
	mu     sync.Mutex
	rng    *rand.Rand
	bounds domain.Bounds
}

// NewFallback is deterministic when seed is non-nil.
func NewFallback(bounds domain.Bounds, seed *uint64) *Fallback {
	var src rand.Source
	if seed != nil {
		src = rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Fallback{rng: rand.New(src), bounds: bounds}
}

func (f *Fallback) Next() domain.Coordinate {
	f.mu.Lock()
	lat := f.bounds.MinLat + f.rng.Float64()*(f.bounds.MaxLat-f.bounds.MinLat)
	lon := f.bounds.MinLon + f.rng.Float64()*(f.bounds.MaxLon-f.bounds.MinLon)
	f.mu.Unlock()
	return f.bounds.Clamp(domain.Coordinate{Latitude: lat, Longitude: lon}.Rounded())
}
