package cli

import (
	"github.com/spf13/cobra"

	"github.com/lineality/bytesurgeon/internal/mutate"
)

// NewAddCommand creates the add command.
func NewAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file> <position> <byte>",
		Short: "Insert a byte before a position",
		Long: `Insert a byte before a zero-indexed position.

The byte previously at the position, and everything after it, shifts
right by one; the file grows by exactly one byte. A position equal to
the file's length appends, so "add" works on empty files too.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			value, err := parseByteValue(args[2])
			if err != nil {
				return err
			}
			return runMutation(opts, cmd, mutate.Request{
				Path:     args[0],
				Position: pos,
				Op:       mutate.Add(value),
			})
		},
	}
}
