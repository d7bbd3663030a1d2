package commands

import (
	"fmt"

	"github.com/ethpandaops/errscope/pkg/constants"
	"github.com/ethpandaops/errscope/pkg/devcontext"
	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/ethpandaops/errscope/pkg/discovery"
	"github.com/ethpandaops/errscope/pkg/ui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewContextCommand creates the context command.
func NewContextCommand(log logrus.FieldLogger, globals *Globals) *cobra.Command {
	var (
		output      string
		projectRoot string
		filePath    string
		tracePath   string
	)

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Show the development context errscope would collect",
		Long: `Inspect a project without analysing any error output.

Reports the source location (from --file, or the first frame found in
--trace), repository state, project composition and installed runtimes.

Examples:
  errscope context
  errscope context --project ./service --file app/main.py
  errscope context --trace crash.log -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}

			cfg, err := loadConfig(globals.ConfigPath)
			if err != nil {
				return err
			}

			root, err := discovery.ResolveRoot(projectRoot)
			if err != nil {
				return fmt.Errorf("failed to resolve project root: %w", err)
			}

			var trace string
			if tracePath != "" {
				if trace, err = readInput(cmd.InOrStdin(), []string{tracePath}); err != nil {
					return err
				}
			}

			opts := cfg.ProcessorOptions().Context
			extractor := devcontext.New(log, diagnostic.NewLibrary(), opts)

			var dc *devcontext.DevelopmentContext

			ui.Busy(output == constants.OutputText, "Collecting development context...", func() {
				dc = extractor.ExtractFullContext(cmd.Context(), root, trace, filePath)
			})

			log.WithFields(logrus.Fields{
				"root":    root,
				"sources": dc.Metadata.Sources,
			}).Debug("Context extraction finished")

			if output != constants.OutputText {
				return writeStructured(cmd.OutOrStdout(), output, dc)
			}

			fmt.Fprintln(cmd.OutOrStdout(), devcontext.Render(dc))

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", constants.OutputText, "Output format (text, json, yaml)")
	cmd.Flags().StringVarP(&projectRoot, "project", "p", "", "Project root (defaults to the current directory)")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Source file to inspect")
	cmd.Flags().StringVarP(&tracePath, "trace", "t", "", "Error output file used to locate the offending source line")

	_ = cmd.RegisterFlagCompletionFunc("output", completeOutputFormats())

	return cmd
}
