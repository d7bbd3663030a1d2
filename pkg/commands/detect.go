package commands

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/ethpandaops/errscope/pkg/constants"
	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/ethpandaops/errscope/pkg/ui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// detectionReport is the structured form of a detect run.
type detectionReport struct {
	Language string         `json:"language" yaml:"language"`
	Score    int            `json:"score" yaml:"score"`
	Tied     []string       `json:"tied,omitempty" yaml:"tied,omitempty"`
	Scores   map[string]int `json:"scores" yaml:"scores"`
}

// NewDetectCommand creates the detect command.
func NewDetectCommand(log logrus.FieldLogger, _ *Globals) *cobra.Command {
	var output string

	lib := diagnostic.NewLibrary()

	cmd := &cobra.Command{
		Use:   "detect [file|-]",
		Short: "Guess the source language of error output",
		Long: `Score error output against every language's fingerprints and report the winner.

When several languages share the top score the alphabetically first one is
chosen and the others are listed as ties.

Examples:
  cargo build 2>&1 | errscope detect
  errscope detect crash.log -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}

			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			detection := lib.Detect(text)
			report := detectionReport{
				Language: detection.Name(),
				Score:    detection.Score,
				Tied:     detection.Tied,
				Scores:   lib.Scores(text),
			}

			log.WithFields(logrus.Fields{
				"language": report.Language,
				"score":    report.Score,
				"tied":     report.Tied,
			}).Debug("Language detection finished")

			if output != constants.OutputText {
				return writeStructured(cmd.OutOrStdout(), output, report)
			}

			displayDetection(cmd.OutOrStdout(), report)

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", constants.OutputText, "Output format (text, json, yaml)")

	_ = cmd.RegisterFlagCompletionFunc("output", completeOutputFormats())

	return cmd
}

func displayDetection(w io.Writer, report detectionReport) {
	names := make([]string, 0, len(report.Scores))
	for name := range report.Scores {
		names = append(names, name)
	}

	// Highest score first, then by name.
	sort.Slice(names, func(i, j int) bool {
		if report.Scores[names[i]] != report.Scores[names[j]] {
			return report.Scores[names[i]] > report.Scores[names[j]]
		}

		return names[i] < names[j]
	})

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		marker := ""
		if name == report.Language {
			marker = "✓"
		}

		rows = append(rows, []string{name, strconv.Itoa(report.Scores[name]), marker})
	}

	ui.Table(w, []string{"Language", "Score", "Selected"}, rows)
	ui.Blank(w)

	if report.Language == "" {
		ui.Warning(w, "No language fingerprint matched")

		return
	}

	ui.Success(w, fmt.Sprintf("Detected %s (score %d)", report.Language, report.Score))

	if len(report.Tied) > 0 {
		ui.Info(w, fmt.Sprintf("Tied with: %v", report.Tied))
	}
}
