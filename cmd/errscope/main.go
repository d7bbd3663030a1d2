package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethpandaops/errscope/pkg/commands"
	"github.com/ethpandaops/errscope/pkg/config"
	"github.com/ethpandaops/errscope/pkg/ui"
	"github.com/ethpandaops/errscope/pkg/version"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

func init() {
	// Set package-level version variables from build flags
	version.Version = buildVersion
	version.Commit = buildCommit
	version.Date = buildDate
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	// Setup logger with conditional writer
	// Logs go to stderr and are hidden unless --verbose is enabled
	logWriter := ui.NewConditionalWriter(os.Stderr, false)
	log := logrus.New()
	log.SetOutput(logWriter)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	rootCmd := &cobra.Command{
		Use:   "errscope",
		Short: "Explain error messages and stack traces",
		Long: `errscope matches error output against a library of known error signatures,
explains what went wrong and how to fix it, and optionally inspects the
project on disk for the context around the failure.`,
		Version:      version.GetFullVersion(),
		SilenceUsage: true,
	}

	// Global flags
	var (
		configPath string
		logLevel   string
		verbose    bool
		envFile    string
	)

	globals := &commands.Globals{}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output (show all logs)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file before running")

	// Parse log level and configure verbose mode
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}

		log.SetLevel(level)

		// Enable log writer based on verbose flag
		logWriter.SetEnabled(verbose)

		if envFile != "" {
			// Existing variables win over the file.
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load env file: %w", err)
			}
		}

		globals.ConfigPath = configPath
		globals.Verbose = verbose

		return nil
	}

	rootCmd.AddCommand(commands.NewAnalyzeCommand(log, globals))
	rootCmd.AddCommand(commands.NewDetectCommand(log, globals))
	rootCmd.AddCommand(commands.NewSignaturesCommand(log, globals))
	rootCmd.AddCommand(commands.NewContextCommand(log, globals))
	rootCmd.AddCommand(commands.NewConfigCommand(log, globals))
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
