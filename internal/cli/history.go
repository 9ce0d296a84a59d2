package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lineality/bytesurgeon/internal/journal"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history [file]",
		Short: "Show recorded mutations",
		Long: `Show the mutations recorded in the audit journal, oldest first.

With a file argument, only that file's mutations are listed.
Requires --journal.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Journal == "" {
				return NewExitError(ExitCommandError, "history requires --journal")
			}

			j, err := journal.Open(opts.Journal)
			if err != nil {
				return WrapExitError(ExitCommandError, "open journal", err)
			}
			defer j.Close()

			var entries []journal.Entry
			if len(args) == 1 {
				entries, err = j.List(cmd.Context(), args[0])
			} else {
				entries, err = j.All(cmd.Context())
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "read journal", err)
			}

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			return out.Entries(entries, func(w io.Writer) {
				renderHistory(w, entries)
			})
		},
	}
}

func renderHistory(w io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no mutations recorded")
		return
	}
	for _, e := range entries {
		switch {
		case e.Status == journal.StatusFailed:
			fmt.Fprintf(w, "%4d  %-7s  %s @ %d  FAILED: %s\n",
				e.Seq, e.Kind, e.Path, e.Position, e.Error)
		case e.Kind == "replace":
			fmt.Fprintf(w, "%4d  %-7s  %s @ %d  0x%02X -> 0x%02X\n",
				e.Seq, e.Kind, e.Path, e.Position, e.OldByte, e.NewByte)
		case e.Kind == "remove":
			fmt.Fprintf(w, "%4d  %-7s  %s @ %d  removed 0x%02X\n",
				e.Seq, e.Kind, e.Path, e.Position, e.OldByte)
		default:
			fmt.Fprintf(w, "%4d  %-7s  %s @ %d  inserted 0x%02X\n",
				e.Seq, e.Kind, e.Path, e.Position, e.NewByte)
		}
	}
}
