package tools

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/javagraph/internal/config"
)

// Server wraps the MCP server with tool handlers.
type Server struct {
	mcp *mcp.Server
	// base holds settings from the command line; per-repo .javagraph.yaml
	// files are layered under it.
	base *config.Config
	// exportMu serializes runs so two exports never write the same directory.
	exportMu sync.Mutex
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(base *config.Config, version string) *Server {
	if base == nil {
		base = config.Default()
	}
	srv := &Server{
		base: base,
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    "javagraph",
				Version: version,
			},
			nil,
		),
	}
	srv.registerTools()
	return srv
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name:        "export_graph",
		Description: "Extract the package, class, method and field graph of a Java source tree and write Neo4j bulk-import CSV files plus a neo4j-admin import command. Returns node and relationship counts and the files written.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"repo_path": {
					"type": "string",
					"description": "Path to the root of the Java source tree."
				},
				"output_dir": {
					"type": "string",
					"description": "Directory for the CSV files. Relative paths resolve against repo_path. Defaults to <repo_path>/neo4j-import."
				},
				"layout": {
					"type": "string",
					"description": "Relationship file layout.",
					"enum": ["by_type", "by_id_space"]
				}
			},
			"required": ["repo_path"]
		}`),
	}, s.handleExportGraph)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "get_graph_schema",
		Description: "Summarize a SQLite snapshot written by a previous export: node counts per label and relationship counts per type, split by whether both endpoints were declared.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"sqlite_path": {
					"type": "string",
					"description": "Path to the snapshot database."
				}
			},
			"required": ["sqlite_path"]
		}`),
	}, s.handleGetGraphSchema)
}

// jsonResult marshals data to JSON and returns as tool result.
func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal err=" + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

// errResult returns a tool result indicating an error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// parseArgs unmarshals the raw JSON arguments into a map.
func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	if len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

// getStringArg extracts a string argument from parsed args.
func getStringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
