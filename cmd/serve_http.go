package cmd

import (
	"fmt"

	mcpserver "github.com/lukman83/relist/mcp"
	"github.com/spf13/cobra"
)

var serveHTTPCmd = &cobra.Command{
	Use:   "serve-http",
	Short: "Start MCP HTTP server",
	Long:  "Start the read-only MCP server over streamable HTTP, protected by RELIST_API_KEY when set.",
	RunE:  runServeHTTP,
}

func init() {
	serveHTTPCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	serveHTTPCmd.Flags().String("curl", "", "File holding the copied curl command (required)")
	_ = serveHTTPCmd.MarkFlagRequired("curl")
	rootCmd.AddCommand(serveHTTPCmd)
}

func runServeHTTP(cmd *cobra.Command, args []string) error {
	svc, err := newMCPService(cmd)
	if err != nil {
		return err
	}

	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}
	if cfg.APIKey == "" {
		log.Warn("RELIST_API_KEY is not set; /mcp is unauthenticated")
	}

	addr := fmt.Sprintf(":%s", port)
	return mcpserver.ServeHTTP(addr, cfg.APIKey, svc)
}
