package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/entkit/entkit"
)

// Global flag values.
var (
	flagConfigFile string
	flagBaseURL    string
	flagToken      string
	flagEntities   string
	flagSchemaPath string
)

// engine is the global engine, initialized on startup.
var engine *entkit.Engine

var rootCmd = &cobra.Command{
	Use:   "entctl",
	Short: "entctl administers declarative data entities",
	Long: `entctl drives the declarative entity administration engine from the
terminal: list, inspect, create, update and delete records of any configured
entity, or run a local development backend with the serve command.

Entities are configured in YAML files or discovered from the remote
describe-entity endpoint on first use.`,
	SilenceUsage:      true,
	PersistentPreRunE: initEngine,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "config file (default: .entctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "base URL of the admin backend")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "bearer token attached to every request")
	rootCmd.PersistentFlags().StringVar(&flagEntities, "entities", "", "YAML file or directory of entity configurations")
	rootCmd.PersistentFlags().StringVar(&flagSchemaPath, "schema-path", "", "remote describe-entity endpoint prefix")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("entctl v0.1.0")
	},
}

// initEngine loads configuration and builds the engine. The serve and
// version commands bring their own wiring and skip it.
func initEngine(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" || cmd.Name() == "serve" {
		return nil
	}

	cfg, err := loadConfig(flagConfigFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseURL := firstNonEmpty(flagBaseURL, cfg.GetString(cfgKeyBaseURL))
	if baseURL == "" {
		return fmt.Errorf("no base URL: pass --base-url or set base_url in the config file")
	}

	transport := entkit.NewHTTPTransport(baseURL)
	// One id per invocation so backend logs can stitch the requests together.
	transport.Headers = map[string]string{"X-Request-ID": uuid.NewString()}
	if token := firstNonEmpty(flagToken, cfg.GetString(cfgKeyToken)); token != "" {
		transport.TokenSource = func(ctx context.Context) (string, error) {
			return token, nil
		}
	}

	registry := entkit.NewRegistry()
	if path := firstNonEmpty(flagEntities, cfg.GetString(cfgKeyEntities)); path != "" {
		if _, err := entkit.RegisterFromPath(registry, path); err != nil {
			return fmt.Errorf("load entities: %w", err)
		}
	}

	var opts []entkit.EngineOption
	if path := firstNonEmpty(flagSchemaPath, cfg.GetString(cfgKeySchemaPath)); path != "" {
		opts = append(opts, entkit.WithSchemaPath(path))
	}

	engine = entkit.NewEngine(registry, transport, opts...)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
