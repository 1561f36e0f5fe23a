// Package cmd provides the CLI commands for kbmcpd.
package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/kbmcp/internal/invindex"
	"github.com/Aman-CERP/kbmcp/internal/kbcontext"
	"github.com/Aman-CERP/kbmcp/internal/kbconfig"
	"github.com/Aman-CERP/kbmcp/internal/kblog"
	"github.com/Aman-CERP/kbmcp/internal/store"
	"github.com/Aman-CERP/kbmcp/internal/vecindex"
	"github.com/Aman-CERP/kbmcp/pkg/version"
)

// Debug logging flag, shared across subcommands.
var (
	debugMode      bool
	configDir      string
	loggingCleanup func()
)

// NewRootCmd creates the root command for the kbmcpd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kbmcpd",
		Short: "Local-first knowledge base search engine, exposed over MCP",
		Long: `kbmcpd is a two-phase chunk-aware search engine for a personal
knowledge base, exposed to AI assistants over the Model Context Protocol.

Run 'kbmcpd serve' to start the MCP server, or use the CLI subcommands
directly to ingest, search, and inspect the knowledge base.`,
		Version: version.Version,
	}

	cmd.SetVersionTemplate("kbmcpd version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.kbmcp/logs/")
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory to look for a .kbmcp.yaml config file")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newRebuildCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newBrowseCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func startLogging(_ *cobra.Command, _ []string) error {
	logCfg := kblog.DefaultConfig()
	if debugMode {
		logCfg = kblog.DebugConfig()
	}

	logger, cleanup, err := kblog.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// openContext loads config from configDir and opens the store and both
// indices, returning a fully wired kbcontext.Context. The caller owns the
// returned Context's lifecycle and must call Close when done.
func openContext() (*kbcontext.Context, error) {
	cfg, err := kbconfig.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	s, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	inv, err := invindex.Open(cfg.Storage.IndexDir)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to open inverted index: %w", err)
	}

	vecPath := filepath.Join(cfg.Storage.IndexDir, "vectors.json")
	vec, err := vecindex.Load(vecPath)
	if err != nil {
		vec = vecindex.New()
	}

	return kbcontext.New(cfg, s, inv, vec, slog.Default()), nil
}

// saveVectorIndex persists the vector index back to disk; called on
// graceful shutdown by any subcommand that may have mutated it.
func saveVectorIndex(kc *kbcontext.Context) {
	vecPath := filepath.Join(kc.Config.Storage.IndexDir, "vectors.json")
	if err := kc.Vec.Save(vecPath); err != nil {
		slog.Warn("failed to persist vector index", slog.String("error", err.Error()))
	}
}
