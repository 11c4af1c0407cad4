package dto

type ResolveInput struct {
	// Explicit, when set, skips the sensor entirely.
	Explicit *CoordinateInput
}

type CoordinateInput struct {
	Latitude  float64
	Longitude float64
}

type ResolutionOutput struct {
	Latitude          float64
	Longitude         float64
	WasDeviceLocation bool
	Trace             []string
	Reason            string
}
