package domain

import "fmt"

type Phase string

const (
	PhaseNotStarted          Phase = "not_started"
	PhaseCreated             Phase = "created"
	PhaseAllEvidenceUploaded Phase = "all_evidence_uploaded"
	PhaseSomeEvidenceFailed  Phase = "some_evidence_failed"
	PhaseDone                Phase = "done"
	PhaseFailed              Phase = "failed"
)

func (p Phase) IsTerminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

func isAllowedTransition(from, to Phase) bool {
	switch from {
	case PhaseNotStarted:
		return to == PhaseCreated || to == PhaseFailed
	case PhaseCreated:
		return to == PhaseAllEvidenceUploaded || to == PhaseSomeEvidenceFailed
	case PhaseAllEvidenceUploaded, PhaseSomeEvidenceFailed:
		return to == PhaseDone
	default:
		return false
	}
}

// Submission tracks the phase of one attempt.
type Submission struct {
	phase Phase
}

func NewSubmission() *Submission {
	return &Submission{phase: PhaseNotStarted}
}

// ResumeSubmission starts from an already created report.
func ResumeSubmission() *Submission {
	return &Submission{phase: PhaseCreated}
}

func (s *Submission) Phase() Phase {
	return s.phase
}

// Transition moves from the expected phase to the next one.
func (s *Submission) Transition(from, to Phase) error {
	if s.phase != from {
		return fmt.Errorf("invalid submission transition: expected %s, got %s", from, s.phase)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed submission transition: %s -> %s", from, to)
	}
	s.phase = to
	return nil
}
