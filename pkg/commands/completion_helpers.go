package commands

import (
	"github.com/ethpandaops/errscope/pkg/constants"
	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/spf13/cobra"
)

// completeLanguages completes values for --language flags.
func completeLanguages(lib *diagnostic.Library) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		langs := lib.Languages()
		completions := make([]string, 0, len(langs)+1)
		completions = append(completions, "auto")

		for _, lang := range langs {
			completions = append(completions, lang.Name())
		}

		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeOutputFormats completes values for --output flags.
func completeOutputFormats() func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return constants.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeSignatureNames completes signature names for positional arguments.
func completeSignatureNames(lib *diagnostic.Library) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		sigs := lib.Signatures("")
		names := make([]string, 0, len(sigs))

		for _, sig := range sigs {
			names = append(names, sig.Name)
		}

		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
