package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mantonx/moviecat/internal/modules/ingestmodule"
	"github.com/mantonx/moviecat/internal/server"
)

var (
	configPath  string
	ingestPages int

	rootCmd = &cobra.Command{
		Use:           "moviecat",
		Short:         "Movie catalog and recommendation server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE:  runServe,
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE:  runMigrate,
	}
	ingestCmd = &cobra.Command{
		Use:   "ingest",
		Short: "Import movies and sequels from TMDB into the catalog",
		RunE:  runIngest,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config file (default $MOVIECAT_CONFIG_PATH or ./moviecat.yaml)")
	ingestCmd.Flags().IntVar(&ingestPages, "pages", 1, "number of discover pages to import (0 for all)")

	rootCmd.AddCommand(serveCmd, migrateCmd, ingestCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if a.config.Path() != "" {
		go func() {
			if err := a.config.Watch(ctx, a.log.Named("config")); err != nil {
				a.log.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	cfg := a.config.Get()
	router := server.SetupRouter(server.Deps{
		Config:   cfg,
		DB:       a.db,
		Registry: a.registry,
		Log:      a.log,
	})
	return server.New(cfg.Server, router, a.log).Run(ctx)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	a, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, m := range a.registry.ListModules() {
		a.log.Info("schema up to date", "module", m.ID())
	}
	return nil
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestPages < 0 {
		return fmt.Errorf("--pages must not be negative")
	}

	a, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.config.Get().TMDB.APIKey == "" {
		return fmt.Errorf("tmdb.api_key (TMDB_API_KEY) is required for ingestion")
	}

	module, ok := a.registry.GetModule(ingestmodule.ModuleID)
	if !ok {
		return fmt.Errorf("ingest module not loaded")
	}
	report, err := module.(*ingestmodule.Module).Importer().Run(cmd.Context(), ingestmodule.Options{MaxPages: ingestPages})
	if err != nil {
		return err
	}

	a.log.Info("ingestion complete",
		"pages", report.Pages,
		"movies", report.Movies,
		"sequels", report.Sequels,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration", report.Duration)
	return nil
}
