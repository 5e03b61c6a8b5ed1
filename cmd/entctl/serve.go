package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entkit/entkit"
	"github.com/entkit/entkit/entserve"
)

var (
	serveListen string
	serveDriver string
	serveDSN    string
	serveDebug  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local development backend",
	Long: `Serve runs a local admin backend speaking the same wire contract the
engine consumes: the describe-entity endpoint plus list, get, create, update
and delete per entity, stored as JSON documents in a local database.

Entities come from the --entities YAML file or directory.

Example:
  entctl serve --entities ./entities --listen :8080
  entctl serve --entities ./entities --driver sqlite --dsn dev.db --debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default :8080)")
	serveCmd.Flags().StringVar(&serveDriver, "driver", "", "database driver: sqlite, postgres or mysql")
	serveCmd.Flags().StringVar(&serveDSN, "dsn", "", "database connection string")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "log every query")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(flagConfigFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	registry := entkit.NewRegistry()
	entities := firstNonEmpty(flagEntities, cfg.GetString(cfgKeyEntities))
	if entities == "" {
		return fmt.Errorf("no entities: pass --entities or set entities in the config file")
	}
	n, err := entkit.RegisterFromPath(registry, entities)
	if err != nil {
		return fmt.Errorf("load entities: %w", err)
	}

	store, err := entserve.NewStore(cmd.Context(), entserve.StoreConfig{
		Driver: firstNonEmpty(serveDriver, cfg.GetString(cfgKeyServeDriver)),
		DSN:    firstNonEmpty(serveDSN, cfg.GetString(cfgKeyServeDSN)),
		Debug:  serveDebug || cfg.GetBool(cfgKeyServeDebug),
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	listen := firstNonEmpty(serveListen, cfg.GetString(cfgKeyServeListen))
	fmt.Printf("serving %d entities on %s\n", n, listen)
	return entserve.New(registry, store).Run(listen)
}
