package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/appregistry/internal/adapter/driven/git"
	"github.com/ericfisherdev/appregistry/internal/adapter/driven/jsonfile"
	sqliteadapter "github.com/ericfisherdev/appregistry/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/appregistry/internal/application"
	"github.com/ericfisherdev/appregistry/internal/config"
	"github.com/ericfisherdev/appregistry/internal/domain/port/driven"
)

// envFile is the optional dotenv file loaded before configuration.
var envFile string

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "appregistry",
	Short: "App credential registry",
	Long: `appregistry stores app credential records and serves them, together
with a build configuration snapshot, over HTTP.

Get started:
  appregistry serve     Start the HTTP API
  appregistry config    Print the build configuration snapshot
  appregistry version   Print the binary version`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(
		serveCmd,
		configCmd,
		versionCmd,
	)
}

// loadConfig loads the dotenv file, then the environment.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	return config.Load()
}

// openStore opens the configured app store. The returned close function
// releases the backend and is never nil.
func openStore(ctx context.Context, cfg *config.Config) (driven.AppStore, func(), error) {
	switch cfg.Store {
	case config.StoreSQLite:
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}
		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			closeDB()
			return nil, nil, err
		}
		slog.Info("sqlite store opened", "path", db.Path())
		return sqliteadapter.NewAppRepo(db), closeDB, nil
	default:
		store, err := jsonfile.NewAppStore(cfg.DataPath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("json store opened", "path", store.Path())
		return store, func() {}, nil
	}
}

// newBuildConfigLoader wires the snapshot loader from configuration.
func newBuildConfigLoader(cfg *config.Config, store driven.AppStore) *application.BuildConfigLoader {
	env := application.BuildEnv{
		Version:   version,
		BuildMode: cfg.BuildMode,
		IsApp:     cfg.BuildApp,
		BasePath:  cfg.BasePath,
		Template:  cfg.InputTemplate,
	}
	return application.NewBuildConfigLoader(store, git.New(cfg.RepoDir), env, cfg.GitTimeout, slog.Default())
}
