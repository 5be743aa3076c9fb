package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/cube2222/octodist/catalog"
	"github.com/cube2222/octodist/meta"
	"github.com/cube2222/octodist/outputs/formats"
)

var tablesCmd = &cobra.Command{
	Use:   "tables [catalog] [schema]",
	Short: "List the distributed tables known to the frontend.",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		routes, err := catalog.FromConfig(cfg.Frontend)
		if err != nil {
			return err
		}

		var catalogName, schemaName string
		if len(args) > 0 {
			catalogName = args[0]
		}
		if len(args) > 1 {
			schemaName = args[1]
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"table", "peers"})
		table.SetAutoFormatHeaders(false)
		for _, route := range routes.List(catalogName, schemaName) {
			peers := make([]string, len(route.Peers))
			for i := range route.Peers {
				peers[i] = route.Peers[i].String()
			}
			table.Append([]string{route.Table.String(), strings.Join(peers, ", ")})
		}
		table.Render()
		return nil
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <table>",
	Short: "Describe the schema of a distributed table.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		routes, err := catalog.FromConfig(cfg.Frontend)
		if err != nil {
			return err
		}
		name, err := meta.ParseTableName(args[0])
		if err != nil {
			return err
		}
		route, err := routes.Route(name)
		if err != nil {
			return err
		}
		fmt.Println(route.Table)
		formats.WriteSchema(os.Stdout, route.Schema)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd, describeCmd)
}
