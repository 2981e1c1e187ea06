package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lukman83/relist/internal/curl"
	"github.com/lukman83/relist/internal/vinted"
	mcpserver "github.com/lukman83/relist/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP stdio server",
	Long:  "Start a read-only MCP server on stdio backed by the session in a curl file.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("curl", "", "File holding the copied curl command (required)")
	_ = serveCmd.MarkFlagRequired("curl")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, err := newMCPService(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting relist MCP server on stdio...")

	if err := mcpserver.Serve(svc); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// newMCPService builds the tool backend from the --curl flag.
func newMCPService(cmd *cobra.Command) (*mcpserver.Service, error) {
	path, _ := cmd.Flags().GetString("curl")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curl file: %w", err)
	}
	creds, err := curl.Parse(string(b))
	if err != nil {
		return nil, err
	}
	sess, err := newSession(creds)
	if err != nil {
		return nil, err
	}
	return &mcpserver.Service{
		Market: sess.client,
		Tokens: sess.tokens,
		List: vinted.ListOptions{
			PerPage:  cfg.PerPage,
			Order:    cfg.Order,
			MaxPages: cfg.MaxPages,
		},
		Log: log,
	}, nil
}
