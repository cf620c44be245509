package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/loregraph/internal/bootstrap"
	"github.com/agenthands/loregraph/internal/config"
	"github.com/agenthands/loregraph/internal/core"
	"github.com/agenthands/loregraph/internal/store"
)

type rootOptions struct {
	configPath string
	fixture    string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "graphctl",
		Short:        "Inspect and seed the campaign entity graph",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if opts.verbose {
				cfg.Log.Level = "debug"
			}
			// Logs go to stderr; stdout carries the payload.
			cfg.Log.Format = "console"
			logger, err := bootstrap.Logger(cfg)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = logger
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $CONFIG_PATH or config/config.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.fixture, "fixture", "", "serve a YAML fixture instead of Memgraph")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newGraphCmd(opts),
		newHierarchyCmd(opts),
		newSeedCmd(opts),
		newIndicesCmd(opts),
	)
	return rootCmd
}

func (o *rootOptions) service(ctx context.Context) (*core.GraphService, func(), error) {
	stack, err := bootstrap.OpenStore(ctx, o.cfg, o.fixture, o.logger, nil)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = stack.Close(context.Background()) }
	return core.NewGraphService(stack.Store, o.cfg.Graph, nil, o.logger), closeFn, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newGraphCmd(opts *rootOptions) *cobra.Command {
	var (
		q        core.GraphQuery
		depth    int
		mindMap  bool
		withImgs bool
	)
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the entity graph around a scope, or the global mind map",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("depth") {
				q.Depth = strconv.Itoa(depth)
			}
			q.IncludeImages = strconv.FormatBool(withImgs)

			scope, graphOpts, err := core.ParseGraphQuery(q, core.LimitsFromConfig(opts.cfg.Graph))
			if err != nil {
				return err
			}
			for _, p := range graphOpts.IgnoredScopes {
				opts.logger.Warn("ignoring scope flag with lower precedence", zap.String("param", p))
			}

			svc, closeFn, err := opts.service(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if mindMap {
				payload, err := svc.MindMap(cmd.Context(), graphOpts)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), payload)
			}
			payload, err := svc.BuildGraph(cmd.Context(), scope, graphOpts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), payload)
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.WorldID, "world", "", "world id")
	f.StringVar(&q.CampaignID, "campaign", "", "campaign id")
	f.StringVar(&q.SessionID, "session", "", "session id")
	f.StringVar(&q.CharacterID, "character", "", "character id")
	f.StringVar(&q.LocationID, "location", "", "location id")
	f.StringVar(&q.ItemID, "item", "", "item id")
	f.StringVar(&q.EventID, "event", "", "event id")
	f.StringVar(&q.PowerID, "power", "", "power id")
	f.IntVar(&depth, "depth", 0, "traversal depth (default graph.default_depth)")
	f.StringVar(&q.NodeTypes, "node-types", "", "comma separated node types to include")
	f.StringVar(&q.EdgeTypes, "edge-types", "", "comma separated edge types to follow")
	f.BoolVar(&withImgs, "include-images", false, "keep image urls")
	f.StringVar(&q.Layout, "layout", "", "layout hint: force, hierarchy or radial")
	f.BoolVar(&mindMap, "mind-map", false, "ignore scope flags and print the global mind map")
	return cmd
}

func newHierarchyCmd(opts *rootOptions) *cobra.Command {
	var (
		q        core.HierarchyQuery
		depth    int
		withImgs bool
	)
	cmd := &cobra.Command{
		Use:   "hierarchy",
		Short: "Print the containment tree of a world, a campaign or every world",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("depth") {
				q.Depth = strconv.Itoa(depth)
			}
			q.IncludeImages = strconv.FormatBool(withImgs)

			scope, treeOpts, err := core.ParseHierarchyQuery(q, core.LimitsFromConfig(opts.cfg.Graph))
			if err != nil {
				return err
			}

			svc, closeFn, err := opts.service(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			payload, err := svc.Hierarchy(cmd.Context(), scope, treeOpts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), payload)
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.WorldID, "world", "", "world id")
	f.StringVar(&q.CampaignID, "campaign", "", "campaign id")
	f.IntVar(&depth, "depth", 0, "tree depth (default graph.default_hierarchy_depth)")
	f.BoolVar(&withImgs, "include-images", false, "keep image urls")
	return cmd
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var withIndices bool
	cmd := &cobra.Command{
		Use:   "seed [fixture.yaml]",
		Short: "Load a YAML fixture into Memgraph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := store.LoadFixture(args[0])
			if err != nil {
				return err
			}
			d, err := bootstrap.OpenDriver(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer d.Close(context.Background())

			if withIndices {
				if err := d.BuildIndices(cmd.Context()); err != nil {
					return err
				}
			}
			res, err := store.Seed(cmd.Context(), d, f)
			if err != nil {
				return err
			}
			for i, id := range res.GeneratedIDs {
				opts.logger.Info("generated id", zap.Int("entity", i), zap.String("name", f.Entities[i].Name), zap.String("id", id))
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d entities and %d relationships\n", res.Entities, res.Relationships)
			return err
		},
	}
	cmd.Flags().BoolVar(&withIndices, "indices", true, "create indices before seeding")
	return cmd
}

func newIndicesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "indices",
		Short: "Create the Memgraph indices used by the entity store",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := bootstrap.OpenDriver(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer d.Close(context.Background())
			if err := d.BuildIndices(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "indices created")
			return err
		},
	}
}
