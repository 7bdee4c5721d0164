package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "stylebook/internal/adapters/mcp"
	"stylebook/internal/config"
	"stylebook/internal/logging"
	"stylebook/internal/setup"
)

func main() {
	dbFlag := flag.String("db", "", "path to the settings database (default from config)")
	levelFlag := flag.String("log-level", "", "log level: debug, info, warn, error")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("stylebook-mcp: %v", err)
	}
	if *dbFlag != "" {
		cfg.Database = *dbFlag
	}
	if *levelFlag != "" {
		cfg.LogLevel = *levelFlag
	}

	// stdout carries the protocol, so logs go to stderr
	ctx, err := logging.Context(context.Background(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("stylebook-mcp: %v", err)
	}

	env, err := setup.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("stylebook-mcp: %v", err)
	}
	defer env.Close()

	mcpServer := server.NewMCPServer(
		"stylebook-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, env.App)
	mcpadapter.RegisterWriteTools(mcpServer, env.App)

	if err := server.ServeStdio(mcpServer,
		server.WithStdioContextFunc(func(context.Context) context.Context { return ctx }),
	); err != nil {
		log.Fatalf("stylebook-mcp: %v", err)
	}
}
