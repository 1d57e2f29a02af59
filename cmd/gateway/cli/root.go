// Package cli implements the gateway's command tree: serve the
// REST-over-SQL surface, or inspect/edit the resource list a running
// configuration would expose.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// Execute builds the root command tree and runs it.
func Execute(version, commit, date string) error {
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Expose SQL tables as a schema-driven REST API",
		Long: `gateway introspects configured database tables and serves each one as
a REST resource: GET/POST/PUT/DELETE mapped to SELECT/INSERT/UPDATE/DELETE,
with query-string filtering, ordering, pagination and column selection
compiled directly against the table's own schema.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "gateway.yaml", "path to the gateway config file")
	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))
	cmd.AddCommand(newResourceCmd())
	cmd.AddCommand(newTokenCmd())

	return cmd
}

func initConfig() {
	viper.SetEnvPrefix("GATEWAY")
	viper.AutomaticEnv()
}
