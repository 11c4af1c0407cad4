package out

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"vecino/internal/modules/report/domain"
	reportout "vecino/internal/modules/report/port/out"
)

// LocalFileSource opens evidence from disk. Missing MIME types are sniffed
// from the content and default to image/jpeg.
type LocalFileSource struct{}

func NewLocalFileSource() reportout.FileSource {
	return LocalFileSource{}
}

func (LocalFileSource) Open(ctx context.Context, file domain.LocalFile) (reportout.OpenedFile, error) {
	if err := ctx.Err(); err != nil {
		return reportout.OpenedFile{}, err
	}
	if file.URI == "" {
		return reportout.OpenedFile{}, fmt.Errorf("evidence has no path")
	}
	f, err := os.Open(file.URI)
	if err != nil {
		return reportout.OpenedFile{}, fmt.Errorf("open evidence: %w", err)
	}
	mimeType := file.MimeType
	if mimeType == "" {
		mimeType, err = sniff(f)
		if err != nil {
			f.Close()
			return reportout.OpenedFile{}, err
		}
	}
	name := file.FileName
	if name == "" {
		name = filepath.Base(file.URI)
	}
	return reportout.OpenedFile{FileName: name, MimeType: mimeType, Content: f}, nil
}

func sniff(f *os.File) (string, error) {
	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect evidence type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind evidence: %w", err)
	}
	// octet-stream and text/plain mean detection found nothing useful
	if detected.Is("application/octet-stream") || detected.Is("text/plain") {
		return domain.DefaultMimeType, nil
	}
	return detected.String(), nil
}
