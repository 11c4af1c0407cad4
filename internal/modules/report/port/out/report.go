package out

import (
	"context"
	"io"

	"vecino/internal/modules/report/domain"
)

type ReportGateway interface {
	// Create returns the server-assigned report id.
	Create(ctx context.Context, principal domain.Principal, draft domain.Draft) (int, error)
	UploadEvidence(ctx context.Context, principal domain.Principal, reportID int, upload Upload) error
}

// Upload is one opened evidence file ready to be sent.
type Upload struct {
	FileName  string
	MimeType  string
	Extension string
	Content   io.Reader
}

// OpenedFile is a LocalFile with a resolved MIME type. The caller closes
// Content.
type OpenedFile struct {
	FileName string
	MimeType string
	Content  io.ReadCloser
}

type FileSource interface {
	Open(ctx context.Context, file domain.LocalFile) (OpenedFile, error)
}

// Ledger records submission attempts locally.
type Ledger interface {
	Record(ctx context.Context, attempt domain.Attempt) error
	List(ctx context.Context, limit int) ([]domain.Attempt, error)
	// FailedEvidence lists the files that failed in the latest attempt for
	// reportID.
	FailedEvidence(ctx context.Context, reportID int) ([]domain.LocalFile, error)
}
