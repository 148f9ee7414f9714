package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bryanchriswhite/FocusVibrance/internal/engine"
	"github.com/bryanchriswhite/FocusVibrance/internal/mcp"
	"github.com/bryanchriswhite/FocusVibrance/internal/wayland"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve window inspection and title filters over MCP",
	Long: `Start an MCP server on stdio. Designed to be invoked by MCP clients,
which can list windows, look up exact titles and manage the title filters.

Logs go to stderr; stdout carries the protocol.`,
	Example: `  # Register with an MCP client
  claude mcp add focusvibrance -- focusvibrance mcp`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	configMgr, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	probe := func(opts engine.Options) (engine.Snapshot, error) {
		return wayland.Probe(cfg.WaylandDisplay, opts)
	}
	server := mcp.NewServer(configMgr, probe)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
