package ui

import (
	"os"
	"strings"

	"github.com/ethpandaops/errscope/pkg/constants"
	"github.com/pterm/pterm"
)

// Busy runs fn behind a transient spinner on stderr. The spinner is removed
// when fn returns and is skipped entirely when show is false or under test.
func Busy(show bool, message string, fn func()) {
	if !show || isTestMode() {
		fn()

		return
	}

	s, err := pterm.DefaultSpinner.
		WithRemoveWhenDone(true).
		WithWriter(os.Stderr).
		Start(message)
	if err != nil {
		fn()

		return
	}

	defer func() { _ = s.Stop() }()

	fn()
}

// isTestMode disables spinners under go test and when ERRSCOPE_TEST_MODE is
// set, avoiding races with pterm's internal goroutines.
func isTestMode() bool {
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, "-test.") {
			return true
		}
	}

	return os.Getenv(constants.EnvTestMode) == "true"
}
