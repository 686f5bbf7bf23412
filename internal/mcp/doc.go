// Package mcp implements the Model Context Protocol (MCP) server for
// CourseShelf.
//
// The server exposes two tools over stdio:
//   - organize_course: plan a study/practice/support reorganization of a
//     course directory
//   - get_status: report database contents and recent runs for a course
//
// MCP is a JSON-RPC 2.0 protocol over stdio, so stdout is reserved for
// protocol traffic and all logging goes to stderr.
//
// Configure in an MCP client:
//
//	{
//	  "mcpServers": {
//	    "courseshelf": {
//	      "command": "/usr/local/bin/courseshelf",
//	      "args": ["serve"],
//	      "env": {
//	        "OPENAI_API_KEY": "your-api-key"
//	      }
//	    }
//	  }
//	}
package mcp
