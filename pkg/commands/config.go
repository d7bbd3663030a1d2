package commands

import (
	"fmt"
	"os"

	"github.com/ethpandaops/errscope/pkg/config"
	"github.com/ethpandaops/errscope/pkg/ui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCommand creates the config command
func NewConfigCommand(log logrus.FieldLogger, globals *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `View, validate and create configuration.

Settings are layered: built-in defaults, then ~/.errscope/config.yaml, then
the project file given by --config.`,
	}

	// config show subcommand
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadLayered(globals.ConfigPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), string(data))

			return nil
		},
	})

	// config validate subcommand
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := loadConfig(globals.ConfigPath); err != nil {
				return err
			}

			ui.Success(cmd.OutOrStdout(), "Configuration is valid")

			return nil
		},
	})

	cmd.AddCommand(newConfigInitCommand(log, globals))

	return cmd
}

func newConfigInitCommand(log logrus.FieldLogger, globals *Globals) *cobra.Command {
	var (
		global bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := globals.ConfigPath
			if global {
				p, err := config.GlobalPath()
				if err != nil {
					return err
				}

				path = p
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			save := config.Default().Save
			if global {
				save = func(_ string) error { return config.SaveGlobal(config.Default()) }
			}

			if err := save(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			log.WithField("path", path).Debug("Wrote default configuration")
			ui.Success(cmd.OutOrStdout(), fmt.Sprintf("Wrote %s", path))

			return nil
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Write the user-level file instead of the project file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}
