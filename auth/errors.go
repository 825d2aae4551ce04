package auth

import (
	"errors"
	"fmt"
)

// FailureReason classifies why a token was rejected. The set is closed.
type FailureReason string

const (
	FailureExpired        FailureReason = "expired"
	FailureMalformed      FailureReason = "malformed"
	FailureMissingSubject FailureReason = "missing_subject"
)

var (
	// ErrTokenExpired matches verification failures caused by an elapsed exp claim
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidToken matches failures caused by a bad signature, structure or encoding
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingSubject matches failures caused by an absent or empty sub claim
	ErrMissingSubject = errors.New("missing subject claim")
)

var reasonSentinels = map[FailureReason]error{
	FailureExpired:        ErrTokenExpired,
	FailureMalformed:      ErrInvalidToken,
	FailureMissingSubject: ErrMissingSubject,
}

// VerificationError is the only error type returned by Verifier.Verify.
type VerificationError struct {
	Reason FailureReason
	Err    error
}

// Error implements the error interface
func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token verification failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("token verification failed (%s)", e.Reason)
}

// Unwrap implements errors.Unwrap
func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the package sentinels by reason.
func (e *VerificationError) Is(target error) bool {
	if t, ok := target.(*VerificationError); ok {
		return e.Reason == t.Reason
	}
	return reasonSentinels[e.Reason] == target
}

func newVerificationError(reason FailureReason, err error) *VerificationError {
	return &VerificationError{Reason: reason, Err: err}
}

// GetFailureReason returns the failure reason carried by err, if any.
func GetFailureReason(err error) (FailureReason, bool) {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr.Reason, true
	}
	return "", false
}
