package domain

import (
	"mime"
	"path"
	"path/filepath"
	"strings"

	apperrors "vecino/internal/platform/errors"
)

const (
	DefaultExtension = "jpg"
	DefaultMimeType  = "image/jpeg"
	DefaultFileName  = "image.jpg"
)

type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Draft is a report ready to be sent. DepartmentID is derived from the
// selected category.
type Draft struct {
	Title               string
	Description         string
	StreetName          string
	StreetNumber        string
	Coordinate          *Coordinate
	CategoryID          int
	DepartmentID        int
	NeighborhoodBoardID int
	Evidence            []LocalFile
}

// ValidateFields checks the user-entered fields.
func (d Draft) ValidateFields() error {
	if strings.TrimSpace(d.Title) == "" {
		return apperrors.Required("titulo")
	}
	if d.CategoryID <= 0 {
		return apperrors.Required("categoria")
	}
	if strings.TrimSpace(d.StreetName) == "" {
		return apperrors.Required("nombre_calle")
	}
	return nil
}

// Validate checks everything the create call needs.
func (d Draft) Validate() error {
	if err := d.ValidateFields(); err != nil {
		return err
	}
	if d.DepartmentID <= 0 {
		return apperrors.Required("departamento")
	}
	if d.Coordinate == nil {
		return apperrors.Required("ubicacion")
	}
	return nil
}

// Address is the free-text location sent as ubicacion.
func (d Draft) Address() string {
	return strings.TrimSpace(strings.TrimSpace(d.StreetName) + " " + strings.TrimSpace(d.StreetNumber))
}

// LocalFile references a piece of evidence on the local filesystem.
type LocalFile struct {
	URI      string
	MimeType string
	FileName string
}

func (f LocalFile) Name() string {
	if f.FileName != "" {
		return f.FileName
	}
	if f.URI != "" {
		return filepath.Base(f.URI)
	}
	return DefaultFileName
}

// Extension is the lowercased file name suffix, else the MIME subtype, else
// jpg.
func (f LocalFile) Extension() string {
	if ext := strings.TrimPrefix(path.Ext(f.Name()), "."); ext != "" {
		return strings.ToLower(ext)
	}
	if f.MimeType != "" {
		mediaType, _, err := mime.ParseMediaType(f.MimeType)
		if err == nil {
			if _, sub, ok := strings.Cut(mediaType, "/"); ok && sub != "" {
				return strings.ToLower(sub)
			}
		}
	}
	return DefaultExtension
}

// Principal is the identity a submission runs under.
type Principal struct {
	AccessToken string
	UserID      int
}
