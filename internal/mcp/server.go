package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/courseshelf/courseshelf/internal/classifier"
	"github.com/courseshelf/courseshelf/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "courseshelf-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	db     *storage.CourseDB
	oracle classifier.Classifier
	logger *slog.Logger
}

// NewServer creates a new MCP server instance backed by the course
// database at dbPath. The classifier provider is detected from the
// environment.
func NewServer(ctx context.Context, dbPath string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := storage.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	oracle, err := classifier.NewFromEnv(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize classifier: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:    mcpServer,
		db:     db,
		oracle: oracle,
		logger: logger,
	}
	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.db.Close() }()
	defer func() { _ = s.oracle.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(organizeCourseTool(), s.handleOrganizeCourse)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
