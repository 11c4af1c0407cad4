package dto

import "time"

type CoordinateInput struct {
	Latitude  float64
	Longitude float64
}

type EvidenceInput struct {
	Path     string
	MimeType string
	FileName string
}

type SubmitInput struct {
	Title               string
	Description         string
	StreetName          string
	StreetNumber        string
	CategoryID          int
	NeighborhoodBoardID int
	// Coordinate, when set, is used instead of resolving the device location.
	Coordinate *CoordinateInput
	Evidence   []EvidenceInput
}

type FailureOutput struct {
	Index    int
	FileName string
	URI      string
	Error    string
}

type LocationOutput struct {
	Latitude          float64
	Longitude         float64
	WasDeviceLocation bool
	Reason            string
}

type SubmitOutput struct {
	AttemptID string
	Outcome   string
	ReportID  int
	Failures  []FailureOutput
	Location  LocationOutput
}

type RetryInput struct {
	ReportID int
	// Evidence defaults to the files that failed last time.
	Evidence []EvidenceInput
}

type AttemptOutput struct {
	ID        string
	Kind      string
	ReportID  int
	Outcome   string
	Title     string
	Cause     string
	CreatedAt time.Time
	Uploaded  int
	Failed    []FailureOutput
}
