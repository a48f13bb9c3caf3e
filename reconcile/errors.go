package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrEntryIndexOutOfRange  = errors.New("entry index out of range")
	ErrInvalidClassification = errors.New("invalid classification")
	ErrStaleGeneration       = errors.New("reconciliation result was replaced, reload and retry")
	ErrRequestOutstanding    = errors.New("a request of this kind is already outstanding")
	ErrSessionBusy           = errors.New("session is busy")
	ErrInvalidState          = errors.New("operation not allowed in the current session state")
	ErrSessionNotFound       = errors.New("import session not found")
	ErrLinkNotSupported      = errors.New("linking an unknown participant to an existing character is not supported")
)

// ErrRejected marks a backend answer that refused the request on its merits
// (validation, duplicates), as opposed to a backend that could not be reached.
var ErrRejected = errors.New("rejected")

type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

type IncompleteEventError struct {
	Missing []string
}

func (e *IncompleteEventError) Error() string {
	return "missing event fields: " + strings.Join(e.Missing, ", ")
}

type IngestionFailedError struct {
	Reference string
	Err       error
}

func (e *IngestionFailedError) Error() string {
	return fmt.Sprintf("could not load report %q: %v", e.Reference, e.Err)
}

func (e *IngestionFailedError) Unwrap() error {
	return e.Err
}

type ResolutionFailedError struct {
	ParticipantName string
	Message         string
	Err             error
}

func (e *ResolutionFailedError) Error() string {
	return fmt.Sprintf("could not create character %q: %s", e.ParticipantName, e.Message)
}

func (e *ResolutionFailedError) Unwrap() error {
	return e.Err
}

type CommitFailedError struct {
	Err error
}

func (e *CommitFailedError) Error() string {
	return "could not create raid: " + e.Err.Error()
}

func (e *CommitFailedError) Unwrap() error {
	return e.Err
}

// Rejected reports whether the backend refused the commit rather than failing.
func (e *CommitFailedError) Rejected() bool {
	return errors.Is(e.Err, ErrRejected)
}
