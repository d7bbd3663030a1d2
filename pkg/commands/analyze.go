package commands

import (
	"github.com/ethpandaops/errscope/pkg/analyzer"
	"github.com/ethpandaops/errscope/pkg/constants"
	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/ethpandaops/errscope/pkg/processor"
	"github.com/ethpandaops/errscope/pkg/ui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(log logrus.FieldLogger, globals *Globals) *cobra.Command {
	var (
		language      string
		output        string
		projectRoot   string
		filePath      string
		withContext   bool
		noSuggestions bool
		noTags        bool
		noWindows     bool
		maxLines      int
	)

	lib := diagnostic.NewLibrary()

	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Diagnose an error message or stack trace",
		Long: `Match error output against the signature library and explain it.

Input is read from the named file, or from stdin when no file or "-" is given.
With --context, the project on disk is inspected as well: the source line the
error points at, recent commits, dependencies and installed runtimes.

Examples:
  python app.py 2>&1 | errscope analyze
  errscope analyze build.log --language go
  errscope analyze trace.txt --context --project ./service -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}

			cfg, err := loadConfig(globals.ConfigPath)
			if err != nil {
				return err
			}

			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			proc := processor.New(log, lib, cfg.ProcessorOptions())

			req := processor.Request{
				Text:               text,
				Language:           language,
				IncludeContext:     !noWindows,
				IncludeSuggestions: !noSuggestions,
				IncludeTags:        !noTags,
				MaxLines:           maxLines,
			}

			var out *processor.Output

			if withContext || projectRoot != "" || filePath != "" {
				ui.Busy(output == constants.OutputText, "Collecting development context...", func() {
					out = proc.ProcessLogWithContext(cmd.Context(), req, projectRoot, filePath)
				})
			} else {
				out = proc.ProcessLog(req)
			}

			log.WithFields(logrus.Fields{
				"analysis_id": out.Metadata.AnalysisID,
				"language":    out.Metadata.DetectedLanguage,
				"matches":     out.Metadata.MatchCount,
			}).Debug("Analysis finished")

			if output != constants.OutputText {
				return writeStructured(cmd.OutOrStdout(), output, out)
			}

			ui.DisplayDiagnosis(cmd.OutOrStdout(), out, globals.Verbose)

			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "L", analyzer.AutoLanguage, "Source language of the error (auto to detect)")
	cmd.Flags().StringVarP(&output, "output", "o", constants.OutputText, "Output format (text, json, yaml)")
	cmd.Flags().StringVarP(&projectRoot, "project", "p", "", "Project root to inspect for context (implies --context)")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Source file the error refers to (implies --context)")
	cmd.Flags().BoolVar(&withContext, "context", false, "Collect development context from the current directory")
	cmd.Flags().BoolVar(&noSuggestions, "no-suggestions", false, "Omit remediation suggestions")
	cmd.Flags().BoolVar(&noTags, "no-tags", false, "Omit classification tags")
	cmd.Flags().BoolVar(&noWindows, "no-windows", false, "Omit the text window around each match")
	cmd.Flags().IntVar(&maxLines, "max-lines", 0, "Analyse at most this many lines (0 uses the configured limit)")

	_ = cmd.RegisterFlagCompletionFunc("language", completeLanguages(lib))
	_ = cmd.RegisterFlagCompletionFunc("output", completeOutputFormats())

	return cmd
}
