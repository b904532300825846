// Command esdex administers the indexes behind esdex resources: the
// initialization sweep, mapping and settings pushes, alias resolution
// and zero-downtime reindexing, driven by the YAML config.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esdex/internal/config"
	"github.com/kailas-cloud/esdex/internal/engine"
	"github.com/kailas-cloud/esdex/internal/engine/elastic"
	"github.com/kailas-cloud/esdex/internal/index"
	logpkg "github.com/kailas-cloud/esdex/internal/logger"
	"github.com/kailas-cloud/esdex/internal/resource"
	"github.com/kailas-cloud/esdex/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "esdex:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "esdex",
	Short:   "Administer the Elasticsearch indexes behind esdex resources",
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(mappingCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(aliasCmd)
	rootCmd.AddCommand(reindexCmd)

	mappingCmd.AddCommand(mappingGetCmd)
	mappingCmd.AddCommand(mappingPutCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsPutCmd)
}

// app is the assembled runtime shared by every command: the declared
// resources, the cluster connections and the index manager over them.
type app struct {
	registry *resource.Registry
	clusters *index.Clusters
	manager  *index.Manager
	log      *zap.Logger
}

func newApp() (*app, error) {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	log.Info("esdex admin",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
	)

	registry := resource.NewRegistry()
	for _, res := range cfg.ResourceList() {
		if err := registry.Add(res); err != nil {
			return nil, fmt.Errorf("resource %q: %w", res.Name, err)
		}
	}

	runtime := cfg.Runtime()
	dial := func(url string) (engine.Store, error) {
		return elastic.NewStore(elastic.Config{
			URLs:     []string{url},
			Username: cfg.Elastic.Username,
			Password: cfg.Elastic.Password,
		})
	}
	clusters := index.NewClusters(runtime, dial)

	return &app{
		registry: registry,
		clusters: clusters,
		manager:  index.NewManager(runtime, registry, clusters, log),
		log:      log,
	}, nil
}

func (a *app) close() {
	a.clusters.Close()
	_ = a.log.Sync()
}

// run assembles the app, installs signal cancellation and hands both to
// the command body.
func run(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		return fn(ctx, a, args)
	}
}

func printJSON(doc any) error {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity to the default cluster",
	Args:  cobra.NoArgs,
	RunE: run(func(ctx context.Context, a *app, _ []string) error {
		store, err := a.clusters.For("")
		if err != nil {
			return err
		}
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("ping: %w", err)
		}
		fmt.Println("ok")
		return nil
	}),
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create missing indexes and reconcile settings for every declared resource",
	Args:  cobra.NoArgs,
	RunE: run(func(ctx context.Context, a *app, _ []string) error {
		return a.manager.InitIndexes(ctx)
	}),
}

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Inspect and push resource mappings",
}

var mappingGetCmd = &cobra.Command{
	Use:   "get <resource>",
	Short: "Print the live mapping of a resource's index",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(ctx context.Context, a *app, args []string) error {
		res, err := a.registry.Lookup(args[0])
		if err != nil {
			return err
		}
		doc, err := a.manager.Mapping(ctx, res)
		if err != nil {
			return err
		}
		return printJSON(doc)
	}),
}

var mappingPutCmd = &cobra.Command{
	Use:   "put",
	Short: "Push the derived mapping of every declared resource",
	Args:  cobra.NoArgs,
	RunE: run(func(ctx context.Context, a *app, _ []string) error {
		return a.manager.PutMappings(ctx)
	}),
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and push index settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <resource>",
	Short: "Print the live settings of a resource's index",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(ctx context.Context, a *app, args []string) error {
		res, err := a.registry.Lookup(args[0])
		if err != nil {
			return err
		}
		doc, err := a.manager.Settings(ctx, res)
		if err != nil {
			return err
		}
		return printJSON(doc)
	}),
}

var settingsPutCmd = &cobra.Command{
	Use:   "put <resource>",
	Short: "Push the configured settings onto a resource's index",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(ctx context.Context, a *app, args []string) error {
		res, err := a.registry.Lookup(args[0])
		if err != nil {
			return err
		}
		settings := a.manager.SettingsFor(res)
		if len(settings) == 0 {
			fmt.Println("no settings configured")
			return nil
		}
		store, err := a.manager.Store(res)
		if err != nil {
			return err
		}
		return a.manager.ApplySettings(ctx, store, a.manager.Resolve(res), settings)
	}),
}

var aliasCmd = &cobra.Command{
	Use:   "alias <name>",
	Short: "Resolve an alias to its physical index on the default cluster",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(ctx context.Context, a *app, args []string) error {
		store, err := a.clusters.For("")
		if err != nil {
			return err
		}
		name, err := a.manager.IndexByAlias(ctx, store, args[0])
		if err != nil {
			return err
		}
		fmt.Println(name)
		return nil
	}),
}

var reindexCmd = &cobra.Command{
	Use:   "reindex <resource>",
	Short: "Rotate a resource's alias onto a freshly built index",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(ctx context.Context, a *app, args []string) error {
		res, err := a.registry.Lookup(args[0])
		if err != nil {
			return err
		}
		next, err := a.manager.Reindex(ctx, res)
		if err != nil {
			return err
		}
		fmt.Println(next)
		return nil
	}),
}
