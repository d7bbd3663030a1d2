package commands

import (
	"github.com/ethpandaops/errscope/pkg/constants"
	"github.com/ethpandaops/errscope/pkg/ui"
	"github.com/ethpandaops/errscope/pkg/version"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}

			info := version.Get()

			if output != constants.OutputText {
				return writeStructured(cmd.OutOrStdout(), output, info)
			}

			ui.KeyValueTable(cmd.OutOrStdout(), "errscope "+info.Version, map[string]string{
				"Commit":   info.Commit,
				"Built":    info.Date,
				"Go":       info.GoVersion,
				"Platform": info.Platform,
			})

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", constants.OutputText, "Output format (text, json, yaml)")

	_ = cmd.RegisterFlagCompletionFunc("output", completeOutputFormats())

	return cmd
}
