package mutate

import (
	"errors"
	"fmt"
)

// MutationError represents a failure of a byte-mutation operation.
//
// Failures fall into four categories:
//   - Not found: the target path does not exist
//   - Invalid input: not a regular file, empty file, position out of
//     bounds, or an unusable file name
//   - Integrity failure: the draft does not relate to the original exactly
//     as the operation demands (size, checksum, byte or frame-shift
//     mismatch, incomplete write, chunk ceiling, target never reached)
//   - Swap failure: the verified draft could not be renamed over the
//     original
//
// MutationError includes structured fields for diagnostics and recovery.
type MutationError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the target file of the operation.
	Path string

	// Position is the zero-indexed byte offset of the operation.
	Position int64

	// Details contains additional context (offsets, expected vs. actual
	// sizes and values).
	Details map[string]string

	// Err is the underlying error, if any.
	Err error
}

// ErrorCode categorizes mutation errors.
type ErrorCode string

const (
	// CodeNotFound indicates the target path does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeInvalidInput indicates the request cannot be applied to the
	// target as it exists on disk.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeIntegrityFailure indicates the draft failed structural
	// verification against the original.
	CodeIntegrityFailure ErrorCode = "INTEGRITY_FAILURE"

	// CodeSwapFailure indicates the rename of draft over original failed.
	CodeSwapFailure ErrorCode = "SWAP_FAILURE"
)

// Error implements the error interface.
func (e *MutationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path=%s, position=%d)", e.Code, e.Message, e.Path, e.Position)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the error code from an error chain.
// Returns an empty code if the error is not a MutationError.
func CodeOf(err error) ErrorCode {
	var me *MutationError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

// IsNotFound reports whether the error is a not-found error.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsInvalidInput reports whether the error is an invalid-input error.
func IsInvalidInput(err error) bool { return CodeOf(err) == CodeInvalidInput }

// IsIntegrityFailure reports whether the error is an integrity failure.
func IsIntegrityFailure(err error) bool { return CodeOf(err) == CodeIntegrityFailure }

// IsSwapFailure reports whether the error is a swap failure.
func IsSwapFailure(err error) bool { return CodeOf(err) == CodeSwapFailure }

func newNotFound(path string) *MutationError {
	return &MutationError{
		Code:    CodeNotFound,
		Message: "target file does not exist",
		Path:    path,
	}
}

func newInvalidInput(path string, position int64, message string) *MutationError {
	return &MutationError{
		Code:     CodeInvalidInput,
		Message:  message,
		Path:     path,
		Position: position,
	}
}

func newIntegrityFailure(path string, position int64, message string, details map[string]string) *MutationError {
	return &MutationError{
		Code:     CodeIntegrityFailure,
		Message:  message,
		Path:     path,
		Position: position,
		Details:  details,
	}
}

func newSwapFailure(path string, position int64, err error) *MutationError {
	return &MutationError{
		Code:     CodeSwapFailure,
		Message:  "cannot atomically replace file",
		Path:     path,
		Position: position,
		Err:      err,
	}
}
