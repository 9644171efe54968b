package transcribe

import (
	"fmt"
	"strings"

	"fastscribe/internal/services"
)

// ExhaustedError is returned when every backend failed recoverably.
type ExhaustedError struct {
	VideoID  string
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s for %s: %s", services.ErrExhausted, e.VideoID, summarizeAttempts(e.Attempts))
}

// Is matches services.ErrExhausted.
func (e *ExhaustedError) Is(target error) bool {
	return target == services.ErrExhausted
}

// BackendError is returned when a backend failed fatally.
type BackendError struct {
	VideoID  string
	Backend  Kind
	Attempts []Attempt
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s for %s: %v", services.ErrFinalBackend, e.Backend, e.VideoID, e.Err)
}

// Is matches services.ErrFinalBackend.
func (e *BackendError) Is(target error) bool {
	return target == services.ErrFinalBackend
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func summarizeAttempts(attempts []Attempt) string {
	if len(attempts) == 0 {
		return "no attempts"
	}
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		parts = append(parts, fmt.Sprintf("%s (%s): %s", a.Backend, a.Outcome, a.Reason))
	}
	return strings.Join(parts, "; ")
}
