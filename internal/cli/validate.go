package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <batch-file>...",
		Short: "Validate operation batch files",
		Long: `Validate one or more YAML operation batch files against the batch
schema without applying them.

Exit codes:
  0 - all files valid
  1 - at least one file invalid
  2 - command error (file not found, etc.)

Example:
  inkwell validate batch.yaml other-batch.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, path := range args {
				if err := ValidateBatch(path); err != nil {
					if GetExitCode(err) == ExitCommandError {
						return err
					}
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "INVALID %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK      %s\n", path)
			}
			if failed > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d of %d files invalid", failed, len(args)))
			}
			return nil
		},
	}

	return cmd
}
