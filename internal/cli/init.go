package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pathq/internal/config"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:           "init",
		Short:         "Write a commented pathq.toml",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			if err := config.CreateDefault(path); err != nil {
				_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to write config", err)
			}
			if formatter.Format == "json" {
				return formatter.Success(map[string]string{"path": path})
			}
			fmt.Fprintf(formatter.Writer, "✓ Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "output", "o", config.FileName, "config file to write")

	return cmd
}
