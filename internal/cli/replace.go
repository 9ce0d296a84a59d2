package cli

import (
	"github.com/spf13/cobra"

	"github.com/lineality/bytesurgeon/internal/mutate"
)

// NewReplaceCommand creates the replace command.
func NewReplaceCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replace <file> <position> <byte>",
		Short: "Replace the byte at a position",
		Long: `Replace the byte at a zero-indexed position with a new value.

The byte value accepts decimal (255), hex (0xFF) or octal (0o377).
The file's length does not change.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
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
				Op:       mutate.Replace(value),
			})
		},
	}
}
