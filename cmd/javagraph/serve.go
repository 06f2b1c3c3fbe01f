package main

import (
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/DeusData/javagraph/internal/config"
	"github.com/DeusData/javagraph/internal/tools"
)

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an MCP server on stdio exposing the export as a tool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			base := config.Default()
			if configPath != "" {
				var err error
				if base, err = config.LoadFile(configPath); err != nil {
					return err
				}
			} else {
				base.ApplyEnv()
			}
			slog.Info("serve.start", "version", version)
			return tools.NewServer(base, version).MCPServer().Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "base config applied to every export")
	return cmd
}
