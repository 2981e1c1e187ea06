package mcp

import (
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/lukman83/relist/internal/repost"
	"github.com/lukman83/relist/internal/vinted"
)

const (
	serverName    = "relist"
	serverVersion = "1.0.0"
)

// Service is the authenticated session the tools read from.
type Service struct {
	Market repost.Marketplace
	Tokens repost.TokenSource
	List   vinted.ListOptions
	Log    *slog.Logger
	Now    func() time.Time
}

func (s *Service) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func newServer(svc *Service) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)

	registerTools(s, svc)
	return s
}

// Serve starts the MCP stdio server with all tools registered.
func Serve(svc *Service) error {
	return server.ServeStdio(newServer(svc))
}
