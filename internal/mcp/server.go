package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bryanchriswhite/FocusVibrance/internal/config"
	"github.com/bryanchriswhite/FocusVibrance/internal/engine"
)

const (
	ServerName    = "focusvibrance"
	ServerVersion = "0.1.0"
)

// ProbeFunc takes a one-shot snapshot of the compositor's windows
type ProbeFunc func(opts engine.Options) (engine.Snapshot, error)

// Server is the MCP server for inspecting windows and editing title filters.
type Server struct {
	mcpServer *mcpsdk.Server
	configMgr *config.Manager
	probe     ProbeFunc
}

// NewServer creates a new MCP server
func NewServer(configMgr *config.Manager, probe ProbeFunc) *Server {
	s := &Server{
		configMgr: configMgr,
		probe:     probe,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run serves on the stdio transport until ctx is done
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List toplevel windows and displays reported by Hyprland, with the focused window and whether its title matches a configured filter. Read-only.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_title_filters",
		Description: "List the exact window titles that receive the vibrance boost.",
	}, s.handleListTitleFilters)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "add_title_filter",
		Description: "Add an exact window title to the filter list. A running daemon picks it up on restart.",
	}, s.handleAddTitleFilter)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remove_title_filter",
		Description: "Remove an exact window title from the filter list.",
	}, s.handleRemoveTitleFilter)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "saturation_matrix",
		Description: "Show the 3x3 colour transform for a saturation value, as floats and as 24.8 fixed point wire values.",
	}, s.handleSaturationMatrix)
}
