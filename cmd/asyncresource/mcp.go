package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/asyncresource/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Exposes the users resource to Model Context Protocol clients through the
list_actions, get_state, dispatch_action and delete_session tools.
Uses stdio by default; --sse serves it over HTTP instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		s := mcp.NewServer(a.host)

		if sse, _ := cmd.Flags().GetBool("sse"); sse {
			port, _ := cmd.Flags().GetInt("port")
			return s.ServeSSE(ctx, port)
		}
		// Logs go to stderr; stdout carries the protocol.
		return s.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Bool("sse", false, "Serve over SSE instead of stdio")
	mcpCmd.Flags().IntP("port", "p", 8081, "Port for the SSE transport")
}
