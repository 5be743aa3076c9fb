package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"

	"github.com/cube2222/octodist/catalog"
	"github.com/cube2222/octodist/client"
	"github.com/cube2222/octodist/graph"
	"github.com/cube2222/octodist/logical"
	"github.com/cube2222/octodist/logs"
	"github.com/cube2222/octodist/meta"
	"github.com/cube2222/octodist/optimizer"
	"github.com/cube2222/octodist/outputs"
	"github.com/cube2222/octodist/outputs/formats"
	"github.com/cube2222/octodist/physical"
)

var queryCmd = &cobra.Command{
	Use:   "query <table>",
	Short: "Query a distributed table.",
	Example: `octodist query cpu
octodist query greptime.public.cpu --where "usage > 0.5 AND host = 'h1'" --columns host,usage --limit 10
octodist query cpu --explain 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (outErr error) {
		ctx := cmd.Context()
		logs.InitializeFileLogger()
		defer logs.CloseLogger()

		cfg, err := readConfig()
		if err != nil {
			return err
		}
		routes, err := catalog.FromConfig(cfg.Frontend)
		if err != nil {
			return errors.Wrap(err, "couldn't build table routes")
		}
		name, err := meta.ParseTableName(args[0])
		if err != nil {
			return err
		}
		route, err := routes.Route(name)
		if err != nil {
			return err
		}

		plan, err := buildQuery(route)
		if err != nil {
			return err
		}
		plan = optimizer.Distribute(plan, routes)

		clients := client.NewDatanodeClients()
		defer func() {
			if err := clients.Close(); err != nil && outErr == nil {
				outErr = errors.Wrap(err, "couldn't close datanode clients")
			}
		}()
		planner := &physical.Planner{
			Resolver: routes,
			Clients:  clients,
		}
		execPlan, err := planner.CreatePhysicalPlan(ctx, plan)
		if err != nil {
			return errors.Wrap(err, "couldn't create physical plan")
		}

		if explain == 1 {
			fmt.Println(plan.String())
			fmt.Println()
			fmt.Println(physical.Explain(execPlan))
			return nil
		} else if explain >= 2 {
			return showGraph(execPlan)
		}

		stream, err := execPlan.Execute(ctx, 0)
		if err != nil {
			return errors.Wrap(err, "couldn't execute query")
		}
		format, err := formats.New(output, os.Stdout)
		if err != nil {
			stream.Close()
			return err
		}
		if err := outputs.NewOutputPrinter(stream, format).Run(ctx); err != nil {
			return errors.Wrap(err, "couldn't run query")
		}
		return nil
	},
}

func buildQuery(route catalog.TableRoute) (logical.Node, error) {
	plan := logical.NewTableScan(route.Table, route.Schema, nil)
	if where != "" {
		predicate, err := logical.ParsePredicate(route.Schema, where)
		if err != nil {
			return logical.Node{}, errors.Wrap(err, "couldn't parse filter")
		}
		plan = logical.NewFilter(plan, predicate)
	}
	if len(columns) > 0 {
		exprs := make([]logical.Expression, len(columns))
		aliases := make([]string, len(columns))
		for i, name := range columns {
			column, err := logical.NewColumn(route.Schema, strings.TrimSpace(name))
			if err != nil {
				return logical.Node{}, err
			}
			exprs[i] = column
		}
		plan = logical.NewProjection(plan, exprs, aliases)
	}
	if limit >= 0 {
		plan = logical.NewLimit(plan, limit)
	}
	if err := plan.Validate(); err != nil {
		return logical.Node{}, errors.Wrap(err, "invalid query")
	}
	return plan, nil
}

// graphSource renders the plan in the dot language.
func graphSource(plan physical.ExecutionPlan) (string, error) {
	g, err := graph.Show(plan.Visualize())
	if err != nil {
		return "", errors.Wrap(err, "couldn't build graph")
	}
	return g.String(), nil
}

func showGraph(plan physical.ExecutionPlan) error {
	source, err := graphSource(plan)
	if err != nil {
		return err
	}
	file, err := os.CreateTemp(os.TempDir(), "octodist-explain-*.png")
	if err != nil {
		return errors.Wrap(err, "couldn't create temporary file")
	}
	cmd := exec.Command("dot", "-Tpng")
	cmd.Stdin = strings.NewReader(source)
	cmd.Stdout = file
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, "couldn't render graph")
	}
	if err := file.Close(); err != nil {
		return errors.Wrap(err, "couldn't close temporary file")
	}
	if err := open.Start(file.Name()); err != nil {
		return errors.Wrap(err, "couldn't open graph")
	}
	return nil
}

var (
	where   string
	columns []string
	limit   int64
	explain int
	output  string
)

func init() {
	queryCmd.Flags().StringVar(&where, "where", "", "Filter rows, like \"usage > 0.5 AND host = 'h1'\".")
	queryCmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to return, all of them by default.")
	queryCmd.Flags().Int64Var(&limit, "limit", -1, "Maximum number of rows to return.")
	queryCmd.Flags().IntVar(&explain, "explain", 0, "Describe the query plan instead of running it, 1 for text, 2 for a graph.")
	queryCmd.Flags().StringVar(&output, "output", "table", "Output format, one of table, csv and json.")
	rootCmd.AddCommand(queryCmd)
}
