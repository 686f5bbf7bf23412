package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/courseshelf/courseshelf/internal/engine"
	"github.com/courseshelf/courseshelf/internal/organizer"
	"github.com/courseshelf/courseshelf/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
)

// handleOrganizeCourse handles the organize_course tool invocation
func (s *Server) handleOrganizeCourse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	threshold := getFloatDefault(args, "threshold", engine.DefaultConfidenceThreshold)
	if threshold < 0 || threshold > 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "threshold must be between 0.0 and 1.0", map[string]interface{}{
			"param": "threshold",
			"value": threshold,
		})
	}
	maxDepth := getIntDefault(args, "max_depth", 0)
	if maxDepth < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "max_depth must not be negative", map[string]interface{}{
			"param": "max_depth",
			"value": maxDepth,
		})
	}
	includeMappings := getBoolDefault(args, "include_mappings", false)

	org := organizer.New(s.db, s.oracle, s.logger, organizer.Options{
		Threshold: threshold,
		MaxDepth:  maxDepth,
	})
	result, err := org.Run(ctx, path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "planning failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	counts := map[string]int{}
	for _, m := range result.Mappings {
		counts[m.Category]++
	}
	response := map[string]interface{}{
		"planned":          true,
		"path":             path,
		"provider":         s.oracle.Provider(),
		"model":            s.oracle.Model(),
		"total_mappings":   len(result.Mappings),
		"files_via_folder": result.FilesViaFolder,
		"files_individual": result.FilesIndividual,
		"skipped_folders":  len(result.SkippedFolders),
		"category_counts":  counts,
	}
	if includeMappings {
		response["mappings"] = sortedMappings(result.Mappings)
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	count, err := s.db.FileCount(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	runs, err := s.db.ListRuns(ctx, path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list runs", map[string]interface{}{
			"error": err.Error(),
		})
	}

	runList := make([]map[string]interface{}, 0, len(runs))
	for _, r := range runs {
		runList = append(runList, map[string]interface{}{
			"run_uuid":         r.RunUUID,
			"provider":         r.Provider,
			"model":            r.Model,
			"threshold":        r.Threshold,
			"total_mappings":   r.TotalMappings,
			"files_via_folder": r.FilesViaFolder,
			"files_individual": r.FilesIndividual,
			"skipped_folders":  r.SkippedFolders,
			"created_at":       r.CreatedAt.Format(time.RFC3339),
		})
	}

	response := map[string]interface{}{
		"path":          path,
		"files_indexed": count,
		"runs":          runList,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a path exists and is a readable directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()
	return nil
}

// sortedMappings flattens the mapping set ordered by source path
func sortedMappings(mappings map[string]types.FileMapping) []types.FileMapping {
	keys := make([]string, 0, len(mappings))
	for k := range mappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]types.FileMapping, 0, len(keys))
	for _, k := range keys {
		out = append(out, mappings[k])
	}
	return out
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a float parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
