package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/httpreq/internal/app"
	"github.com/oshokin/httpreq/internal/logger"
)

var (
	//nolint:gochecknoglobals // Cobra command requires a global definition.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Configuration file management commands",
		Long: `Manage the httpreq configuration file.

Use 'config init' to write a file with the default settings and
'config set' to change a single setting while keeping comments intact.`,
		PersistentPreRun: func(*cobra.Command, []string) {},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			force, _ := cmd.Flags().GetBool("force")

			if err := app.ExecuteConfigInitCommand(cmd.Context(), configFilenameFromFlag, force); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to write configuration: %v", err)
			}
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	configSetCmd = &cobra.Command{
		Use:     "set {key} {value}",
		Short:   "Change one setting in the configuration file",
		Example: "httpreq config set base_url https://api.example.com/v1",
		Args:    cobra.ExactArgs(2), //nolint:mnd // Key and value.
		Run: func(cmd *cobra.Command, args []string) {
			if err := app.ExecuteConfigSetCommand(cmd.Context(), configFilenameFromFlag, args[0], args[1]); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to update configuration: %v", err)
			}
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing configuration file.")

	configCmd.AddCommand(configInitCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
