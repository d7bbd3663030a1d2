package commands

import (
	"fmt"
	"strings"

	"github.com/ethpandaops/errscope/pkg/constants"
	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/ethpandaops/errscope/pkg/ui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// signatureView is the serialisable form of a signature.
type signatureView struct {
	Name         string   `json:"name" yaml:"name"`
	Category     string   `json:"category" yaml:"category"`
	Severity     string   `json:"severity" yaml:"severity"`
	Languages    []string `json:"languages" yaml:"languages"`
	Pattern      string   `json:"pattern" yaml:"pattern"`
	Explanation  string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	WhatHappened string   `json:"whatHappened,omitempty" yaml:"whatHappened,omitempty"`
	Remediation  []string `json:"remediation,omitempty" yaml:"remediation,omitempty"`
	Prevention   string   `json:"prevention,omitempty" yaml:"prevention,omitempty"`
	Reference    string   `json:"reference,omitempty" yaml:"reference,omitempty"`
}

func newSignatureView(sig *diagnostic.Signature) signatureView {
	return signatureView{
		Name:         sig.Name,
		Category:     string(sig.Category),
		Severity:     string(sig.Severity),
		Languages:    sig.Languages,
		Pattern:      sig.Pattern.String(),
		Explanation:  sig.Explanation,
		WhatHappened: sig.WhatHappened,
		Remediation:  sig.Remediation,
		Prevention:   sig.Prevention,
		Reference:    sig.Reference,
	}
}

// NewSignaturesCommand creates the signatures command.
func NewSignaturesCommand(log logrus.FieldLogger, _ *Globals) *cobra.Command {
	lib := diagnostic.NewLibrary()

	cmd := &cobra.Command{
		Use:     "signatures",
		Aliases: []string{"sigs"},
		Short:   "Browse the error signature library",
		Long: `List the known error signatures or show the knowledge attached to one.

Examples:
  errscope signatures list
  errscope signatures list --language rust
  errscope signatures show IndexError`,
	}

	cmd.AddCommand(newSignaturesListCommand(log, lib))
	cmd.AddCommand(newSignaturesShowCommand(log, lib))

	return cmd
}

func newSignaturesListCommand(log logrus.FieldLogger, lib *diagnostic.Library) *cobra.Command {
	var (
		language string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List error signatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}

			sigs := lib.Signatures(language)

			log.WithFields(logrus.Fields{
				"language": language,
				"count":    len(sigs),
			}).Debug("Listing signatures")

			if output != constants.OutputText {
				views := make([]signatureView, 0, len(sigs))
				for _, sig := range sigs {
					views = append(views, newSignatureView(sig))
				}

				return writeStructured(cmd.OutOrStdout(), output, views)
			}

			if len(sigs) == 0 {
				ui.Warning(cmd.OutOrStdout(), fmt.Sprintf("No signatures for language %q", language))

				return nil
			}

			rows := make([][]string, 0, len(sigs))
			for _, sig := range sigs {
				rows = append(rows, []string{
					sig.Name,
					ui.SeverityLabel(sig.Severity),
					sig.Category.Display(),
					strings.Join(sig.Languages, ", "),
				})
			}

			ui.Table(cmd.OutOrStdout(), []string{"Name", "Severity", "Category", "Languages"}, rows)
			ui.Blank(cmd.OutOrStdout())
			ui.Info(cmd.OutOrStdout(), fmt.Sprintf("%d signatures", len(sigs)))

			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "L", "", "Only list signatures for this language")
	cmd.Flags().StringVarP(&output, "output", "o", constants.OutputText, "Output format (text, json, yaml)")

	_ = cmd.RegisterFlagCompletionFunc("language", completeLanguages(lib))
	_ = cmd.RegisterFlagCompletionFunc("output", completeOutputFormats())

	return cmd
}

func newSignaturesShowCommand(log logrus.FieldLogger, lib *diagnostic.Library) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:               "show <name>",
		Short:             "Show the knowledge attached to a signature",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSignatureNames(lib),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}

			var matches []*diagnostic.Signature

			for _, sig := range lib.Signatures("") {
				if strings.EqualFold(sig.Name, args[0]) {
					matches = append(matches, sig)
				}
			}

			if len(matches) == 0 {
				return fmt.Errorf("unknown signature %q", args[0])
			}

			log.WithField("name", args[0]).Debug("Showing signature")

			if output != constants.OutputText {
				views := make([]signatureView, 0, len(matches))
				for _, sig := range matches {
					views = append(views, newSignatureView(sig))
				}

				return writeStructured(cmd.OutOrStdout(), output, views)
			}

			for i, sig := range matches {
				if i > 0 {
					ui.Blank(cmd.OutOrStdout())
				}

				ui.DisplaySignature(cmd.OutOrStdout(), sig)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", constants.OutputText, "Output format (text, json, yaml)")

	_ = cmd.RegisterFlagCompletionFunc("output", completeOutputFormats())

	return cmd
}
