package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cube2222/octodist/datanode"
	"github.com/cube2222/octodist/logs"
	"github.com/cube2222/octodist/meta"
	"github.com/cube2222/octodist/outputs/formats"
	"github.com/cube2222/octodist/table"
)

var datanodeCmd = &cobra.Command{
	Use:   "datanode",
	Short: "Run a datanode, serving the tables in its object store.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logs.InitializeStderrLogger("[datanode] ")

		cfg, err := readConfig()
		if err != nil {
			return err
		}
		node, err := datanode.New(cfg.Datanode)
		if err != nil {
			return err
		}
		if err := node.Start(); err != nil {
			return err
		}
		log.Printf("datanode %d started", cfg.Datanode.ID)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := node.Serve(); err != nil {
				return errors.Wrap(err, "flight server failed")
			}
			return nil
		})

		metricsServer := node.MetricsServer()
		if metricsServer != nil {
			g.Go(func() error {
				if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return errors.Wrap(err, "metrics server failed")
				}
				return nil
			})
		}

		g.Go(func() error {
			<-ctx.Done()
			log.Printf("shutting down")
			node.Shutdown()
			if metricsServer != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := metricsServer.Shutdown(shutdownCtx); err != nil {
					return errors.Wrap(err, "couldn't shut down metrics server")
				}
			}
			return nil
		})

		return g.Wait()
	},
}

var datanodeCreateCmd = &cobra.Command{
	Use:   "create <table> <manifest.yml>",
	Short: "Create or replace a table in the datanode's object store.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, name, err := localTables(args[0])
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return errors.Wrap(err, "couldn't read manifest")
		}
		manifest, err := table.ParseManifest(data)
		if err != nil {
			return err
		}
		return tables.Create(cmd.Context(), name, manifest)
	},
}

var datanodePutCmd = &cobra.Command{
	Use:   "put <table> <file>...",
	Short: "Upload data files of a table to the datanode's object store.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tables, name, err := localTables(args[0])
		if err != nil {
			return err
		}
		if _, err := tables.Manifest(ctx, name); err != nil {
			return err
		}
		for _, path := range args[1:] {
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "couldn't read %s", path)
			}
			fileName := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(path))
			if err := tables.PutFile(ctx, name, fileName, data); err != nil {
				return err
			}
			fmt.Printf("uploaded %s as %s\n", path, fileName)
		}
		return nil
	},
}

var datanodeTablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables in the datanode's object store.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		node, err := datanode.New(cfg.Datanode)
		if err != nil {
			return err
		}
		names, err := node.Tables().List(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			manifest, err := node.Tables().Manifest(ctx, name)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", name, manifest.Format)
			formats.WriteSchema(os.Stdout, manifest.Schema())
		}
		return nil
	},
}

func localTables(tableName string) (*table.Provider, meta.TableName, error) {
	name, err := meta.ParseTableName(tableName)
	if err != nil {
		return nil, meta.TableName{}, err
	}
	cfg, err := readConfig()
	if err != nil {
		return nil, meta.TableName{}, err
	}
	node, err := datanode.New(cfg.Datanode)
	if err != nil {
		return nil, meta.TableName{}, err
	}
	return node.Tables(), name, nil
}

func init() {
	datanodeCmd.AddCommand(datanodeCreateCmd, datanodePutCmd, datanodeTablesCmd)
	rootCmd.AddCommand(datanodeCmd)
}
