package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/phobologic/varhint/internal/mcpserver"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve variable type queries as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := mcpserver.NewServer(version, mcpserver.NewHandlers(a.store, a.analyzer))
			a.logger.Printf("serving MCP tools on stdio")
			return server.ServeStdio(s)
		},
	}
}
