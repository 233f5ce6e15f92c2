package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/SShadowS/al-call-hierarchy/internal/debug"
	"github.com/SShadowS/al-call-hierarchy/internal/mcp"
)

// runMCP implements `--mcp`: index --project (or cwd) once, then serve the
// call-hierarchy MCP tools over stdio until the client disconnects or a
// termination signal arrives, mirroring the teacher's mcpCommand graceful
// shutdown handling.
func runMCP(c *cli.Context) error {
	debug.SetMCPMode(true)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	idx, err := buildIndex(cfg)
	if err != nil {
		return err
	}

	server := mcp.NewServer(idx.Graph)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	case sig := <-sigChan:
		debug.LogMCP("received signal %v, shutting down\n", sig)
		cancel()
		<-errChan
		return nil
	}
}
