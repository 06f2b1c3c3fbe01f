package tools

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/javagraph/internal/store"
)

func (s *Server) handleGetGraphSchema(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	path := getStringArg(args, "sqlite_path")
	if path == "" {
		return errResult("sqlite_path is required"), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return errResult(fmt.Sprintf("snapshot not found: %s", path)), nil
	}

	st, err := store.OpenPath(path)
	if err != nil {
		return errResult(fmt.Sprintf("open snapshot: %v", err)), nil
	}
	defer st.Close()

	schema, err := st.GetSchema()
	if err != nil {
		return errResult(fmt.Sprintf("schema: %v", err)), nil
	}
	return jsonResult(schema), nil
}
