package mcp

import (
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/mapty/internal/session"
)

// New creates an MCP server with all tools and resources registered.
func New(sessions *session.Manager, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("mapty", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("mapty workout tracker. Start a session at a position, click the map where a workout happened, then log it. Workouts live only as long as their session."),
	)

	h := &handlers{sessions: sessions, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolStartSession, Handler: h.startSession},
		server.ServerTool{Tool: toolClickMap, Handler: h.clickMap},
		server.ServerTool{Tool: toolLogWorkout, Handler: h.logWorkout},
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolFocusWorkout, Handler: h.focusWorkout},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resSessions, Handler: h.sessionList},
	)

	return s
}

// Handler serves the MCP server over streamable HTTP.
func Handler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	sessions *session.Manager
	log      *slog.Logger
}

// --- Resource definitions ---

var resSessions = mcp.NewResource(
	"mapty://sessions",
	"Sessions",
	mcp.WithResourceDescription("Live page sessions with their workout counts"),
	mcp.WithMIMEType("application/json"),
)
