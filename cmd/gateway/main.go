// Command gateway runs the ChartDB MCP gateway: the JSON-RPC endpoint, the
// OAuth-suppression surface and the AI chat API on one HTTP listener.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/chartdb/chartdb-gateway/internal/ai"
	"github.com/chartdb/chartdb-gateway/internal/api"
	"github.com/chartdb/chartdb-gateway/internal/assistant"
	"github.com/chartdb/chartdb-gateway/internal/config"
	"github.com/chartdb/chartdb-gateway/internal/domain"
	"github.com/chartdb/chartdb-gateway/internal/logger"
	"github.com/chartdb/chartdb-gateway/internal/mcp"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "ChartDB MCP gateway and AI assistant server",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cfgFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogJSON)

	registry := ai.NewRegistry(nil, ai.RegistryConfig{
		DeepSeekBaseURL: cfg.Providers.DeepSeekBaseURL,
		DeepSeekAPIKey:  cfg.Providers.DeepSeekAPIKey,
		MistralBaseURL:  cfg.Providers.MistralBaseURL,
	})

	// The dev server runs on in-memory stores; deployments wire their own
	// persistence behind the assistant interfaces.
	svc := assistant.NewService(
		assistant.NewMemSessionStore(),
		assistant.NewMemMessageStore(),
		assistant.NewMemConfigStore(),
		emptyDiagrams{},
		registry,
		log,
	)
	relay := assistant.NewRelay(cfg.Stream.WorkerPool, cfg.Stream.Timeout, log)

	catalog := mcp.NewCatalog()
	dispatcher := mcp.NewDispatcher(domain.UnimplementedServices())
	router := mcp.NewRouter(catalog, dispatcher, log)

	srv := api.NewServer(router, catalog, svc, relay, cfg, log)

	log.Info().Str("addr", cfg.ListenAddr).Msg("gateway listening")
	return http.ListenAndServe(cfg.ListenAddr, srv)
}

// emptyDiagrams satisfies the context reader when no diagram backend is
// configured; every session starts from a blank schema.
type emptyDiagrams struct{}

func (emptyDiagrams) Snapshot(diagramID, userID string) (*assistant.DiagramContext, error) {
	return &assistant.DiagramContext{DiagramID: diagramID, DiagramName: diagramID, DatabaseType: "generic"}, nil
}
