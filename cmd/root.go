package cmd

import (
	"github.com/spf13/cobra"

	"library/config"
	"library/log"
)

var (
	configFile string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:           "library",
	Short:         "Library management REST API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if err := log.Configure(loaded.Log.Level, loaded.Log.Format); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, watchCmd)
}

// Execute runs the command selected on the command line.
func Execute() error {
	return rootCmd.Execute()
}
