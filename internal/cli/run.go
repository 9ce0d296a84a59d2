package cli

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lineality/bytesurgeon/internal/journal"
	"github.com/lineality/bytesurgeon/internal/mutate"
)

// parsePosition parses a zero-indexed byte offset.
func parsePosition(s string) (int64, error) {
	pos, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "invalid position "+strconv.Quote(s), err)
	}
	if pos < 0 {
		return 0, NewExitError(ExitCommandError, "position must not be negative")
	}
	return pos, nil
}

// parseByteValue parses a byte value in decimal, 0x-hex or 0o-octal.
func parseByteValue(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "invalid byte value "+strconv.Quote(s)+" (want 0-255 or 0x00-0xFF)", err)
	}
	return byte(v), nil
}

// runMutation applies one request through the pipeline, records the
// outcome in the journal when one is configured, and renders the result.
func runMutation(opts *RootOptions, cmd *cobra.Command, req mutate.Request) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	pipe := &mutate.Pipeline{Log: slog.Default()}
	receipt, err := pipe.Apply(req)

	recordOutcome(opts, req, receipt, err)

	if err != nil {
		if werr := out.Failure(err); werr != nil {
			return WrapExitError(ExitCommandError, "render failure", werr)
		}
		return WrapExitError(ExitFailure, "mutation failed", err)
	}

	if werr := out.Receipt(receipt); werr != nil {
		return WrapExitError(ExitCommandError, "render receipt", werr)
	}
	return nil
}

// recordOutcome journals the attempt, best-effort. A mutation that
// succeeded on disk but could not be journaled stays succeeded; the miss
// is only logged.
func recordOutcome(opts *RootOptions, req mutate.Request, receipt *mutate.Receipt, opErr error) {
	if opts.Journal == "" {
		return
	}

	j, err := journal.Open(opts.Journal)
	if err != nil {
		slog.Warn("could not open journal; mutation not recorded",
			"journal", opts.Journal, "error", err)
		return
	}
	defer j.Close()

	var entry journal.Entry
	if opErr != nil {
		entry = journal.FromFailure(req, opErr)
	} else {
		entry = journal.FromReceipt(receipt)
	}

	if _, err := j.Record(context.Background(), entry); err != nil {
		slog.Warn("could not record mutation in journal",
			"journal", opts.Journal, "error", err)
	}
}
