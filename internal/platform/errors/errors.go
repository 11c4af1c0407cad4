package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrNoSession          = errors.New("no session")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNetwork            = errors.New("network unavailable")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrServer             = errors.New("server error")
)

const genericMessage = "something went wrong, please try again"

// ValidationError is detected client-side and never reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s is required", ErrValidation.Error(), e.Field)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Required(field string) error {
	return &ValidationError{Field: field}
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// RemoteError describes a failed exchange with the backend. Kind is one of
// ErrUnauthorized, ErrNetwork, ErrMalformedResponse, ErrServer or
// ErrInvalidCredentials.
type RemoteError struct {
	Kind   error
	Status int
	Detail string
	Fields map[string][]string
	Cause  error
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Status != 0 {
		fmt.Fprintf(&sb, " (status %d)", e.Status)
	}
	if e.Detail != "" {
		sb.WriteString(": " + e.Detail)
	} else if e.Cause != nil {
		sb.WriteString(": " + e.Cause.Error())
	}
	return sb.String()
}

func (e *RemoteError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// RequiresLogin reports whether err is the signal to drop the local session
// and send the user back to the login flow.
func RequiresLogin(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// UserMessage renders err for humans: the backend detail when one was sent,
// the validation reason for client-side checks, a fixed text otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Error()
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		if remote.Detail != "" {
			return remote.Detail
		}
		if msg := firstFieldMessage(remote.Fields); msg != "" {
			return msg
		}
	}
	switch {
	case errors.Is(err, ErrNoSession), errors.Is(err, ErrUnauthorized):
		return "session expired, run `vecino login`"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid identifier or password"
	case errors.Is(err, ErrNetwork):
		return "could not reach the server, check your connection"
	case errors.Is(err, ErrNotFound):
		return err.Error()
	}
	return genericMessage
}

func firstFieldMessage(fields map[string][]string) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	// map order is random; pick the alphabetically first field so the
	// message is stable across runs
	first := keys[0]
	for _, k := range keys[1:] {
		if k < first {
			first = k
		}
	}
	if len(fields[first]) == 0 {
		return ""
	}
	return fields[first][0]
}
