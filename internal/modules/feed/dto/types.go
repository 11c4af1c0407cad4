package dto

import "time"

type PublicationOutput struct {
	ID          int
	Code        string
	Title       string
	Description string
	Status      string
	Category    string
	Location    string
	// PublishedAt is zero when the backend date did not parse.
	PublishedAt time.Time
	RawDate     string
}

type ImageOutput struct {
	ID        int
	URL       string
	Extension string
}

type AnnouncementOutput struct {
	ID          int
	Title       string
	Subtitle    string
	Status      string
	Description string
	Category    string
	Author      string
	Date        time.Time
	RawDate     string
	Images      []ImageOutput
}
