package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/lineality/bytesurgeon/internal/mutate"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Mutation failure (invalid input, integrity, swap)
	ExitCommandError = 2 // Command error (bad arguments, unusable journal, etc.)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string            `json:"code"` // mutation error code, or "COMMAND_ERROR"
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Receipt outputs a mutation receipt in the configured format.
func (f *OutputFormatter) Receipt(r *mutate.Receipt) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: r})
	}

	fmt.Fprintf(f.Writer, "applied %s to %s\n", r.Kind, r.Path)
	fmt.Fprintf(f.Writer, "  position: %d\n", r.Position)
	switch r.Kind {
	case mutate.KindReplace:
		fmt.Fprintf(f.Writer, "  old byte: 0x%02X\n", r.OldByte)
		fmt.Fprintf(f.Writer, "  new byte: 0x%02X\n", r.NewByte)
	case mutate.KindRemove:
		fmt.Fprintf(f.Writer, "  removed byte: 0x%02X\n", r.OldByte)
	case mutate.KindAdd:
		fmt.Fprintf(f.Writer, "  inserted byte: 0x%02X\n", r.NewByte)
	}
	fmt.Fprintf(f.Writer, "  size: %d -> %d bytes\n", r.OriginalSize, r.NewSize)
	return nil
}

// Failure outputs a mutation failure in the configured format.
func (f *OutputFormatter) Failure(err error) error {
	if f.Format == "json" {
		ce := &CLIError{Code: "COMMAND_ERROR", Message: err.Error()}
		var me *mutate.MutationError
		if errors.As(err, &me) {
			ce.Code = string(me.Code)
			ce.Message = me.Message
			ce.Details = me.Details
		}
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "error", Error: ce})
	}

	fmt.Fprintf(f.Writer, "error: %v\n", err)
	return nil
}

// Entries outputs journal history in the configured format.
func (f *OutputFormatter) Entries(data interface{}, render func(io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	render(f.Writer)
	return nil
}
