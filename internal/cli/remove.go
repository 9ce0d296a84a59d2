package cli

import (
	"github.com/spf13/cobra"

	"github.com/lineality/bytesurgeon/internal/mutate"
)

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <file> <position>",
		Short: "Remove the byte at a position",
		Long: `Remove the byte at a zero-indexed position.

Every byte after the position shifts left by one; the file shrinks by
exactly one byte. Removing the only byte of a one-byte file leaves an
empty file.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			return runMutation(opts, cmd, mutate.Request{
				Path:     args[0],
				Position: pos,
				Op:       mutate.Remove(),
			})
		},
	}
}
