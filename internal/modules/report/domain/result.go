package domain

import (
	"fmt"
	"time"
)

type Outcome string

const (
	OutcomeCreated                     Outcome = "created"
	OutcomeCreatedWithEvidenceFailures Outcome = "created_with_evidence_failures"
	OutcomeFailed                      Outcome = "failed"
)

type EvidenceFailure struct {
	Index    int
	FileName string
	URI      string
	Err      error
}

func (f EvidenceFailure) String() string {
	return fmt.Sprintf("#%d %s: %v", f.Index, f.FileName, f.Err)
}

// Result of one submission. ReportID is set for both created outcomes and is
// never rolled back.
type Result struct {
	AttemptID string
	Outcome   Outcome
	ReportID  int
	Failures  []EvidenceFailure
	Cause     error
	Phase     Phase
}

type EvidenceStatus string

const (
	EvidenceUploaded EvidenceStatus = "uploaded"
	EvidenceFailed   EvidenceStatus = "failed"
)

type AttemptKind string

const (
	AttemptSubmit AttemptKind = "submit"
	AttemptRetry  AttemptKind = "retry"
)

type EvidenceRecord struct {
	Index    int
	FileName string
	URI      string
	MimeType string
	Status   EvidenceStatus
	Error    string
}

// Attempt is the ledger entry of one Submit or RetryEvidence call.
type Attempt struct {
	ID        string
	Kind      AttemptKind
	ReportID  int
	Outcome   Outcome
	Title     string
	Cause     string
	CreatedAt time.Time
	Evidence  []EvidenceRecord
}
