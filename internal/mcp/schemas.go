package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// organizeCourseTool returns the tool definition for organize_course
func organizeCourseTool() mcp.Tool {
	return mcp.Tool{
		Name:        "organize_course",
		Description: "Plan a reorganization of a course directory into study, practice, and support buckets",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the course root directory",
				},
				"threshold": map[string]interface{}{
					"type":        "number",
					"description": "Confidence threshold for folder-level assignment (0.0-1.0)",
					"default":     0.75,
					"minimum":     0.0,
					"maximum":     1.0,
				},
				"max_depth": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum directory depth to scan (0 = unlimited)",
					"default":     0,
					"minimum":     0,
				},
				"include_mappings": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include the full file mapping list in the response",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report course database contents and recent planning runs",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the course root directory",
				},
			},
			Required: []string{"path"},
		},
	}
}
