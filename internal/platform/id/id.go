package id

import "github.com/google/uuid"

// Generator creates opaque identifiers for request tracing and ledger rows.
type Generator interface {
	New() string
}

type UUID struct{}

func (UUID) New() string {
	return uuid.NewString()
}

// Sequence hands out fixed ids in order; the last one repeats once exhausted.
type Sequence []string

func (s *Sequence) New() string {
	if len(*s) == 0 {
		return ""
	}
	next := (*s)[0]
	if len(*s) > 1 {
		*s = (*s)[1:]
	}
	return next
}
