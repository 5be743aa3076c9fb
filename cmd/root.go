package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cube2222/octodist/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "octodist",
	Short: "Distributed queries over time-series tables spread across datanodes.",
	Long: `octodist runs datanodes, which serve the tables kept in their object store,
and queries them from a frontend, which scatters plans to the datanodes holding a table
and gathers the results.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute(ctx context.Context) {
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the configuration file.")
}

func readConfig() (*config.Config, error) {
	return config.Read(configPath)
}
