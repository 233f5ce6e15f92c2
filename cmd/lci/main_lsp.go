package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/SShadowS/al-call-hierarchy/internal/debug"
	"github.com/SShadowS/al-call-hierarchy/internal/lspserver"
)

// runLSP implements `--lsp` (and the no-project default): run the
// call-hierarchy language server over stdio until the client disconnects.
func runLSP(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	srv, err := lspserver.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("create language server: %w", err)
	}

	debug.LogLSP("al-callhier language server ready on stdio\n")
	if err := srv.RunStdio(); err != nil {
		return fmt.Errorf("language server: %w", err)
	}
	return nil
}
