// Command lci is the AL call-hierarchy analyzer: a batch indexer/quality
// reporter (--project/--analyze), a call-hierarchy language server (--lsp),
// and an MCP tool server (--mcp), sharing one indexer.Indexer/callgraph.Graph
// per invocation.
//
// Grounded on the teacher's cmd/lci/main.go urfave/cli/v2 App structure and
// its config/debug wiring, narrowed from the teacher's many subcommands
// (search, grep, tree, git-analyze, server/shutdown daemon pair) down to the
// six flags SPEC_FULL.md's external interface names.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/SShadowS/al-call-hierarchy/internal/callgraph"
	"github.com/SShadowS/al-call-hierarchy/internal/config"
	"github.com/SShadowS/al-call-hierarchy/internal/debug"
	"github.com/SShadowS/al-call-hierarchy/internal/version"
)

func main() {
	app := &cli.App{
		Name:                   "al-callhier",
		Usage:                  "AL call-hierarchy analyzer, language server, and MCP tool server",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "project",
				Usage: "Project root directory to index (batch index mode)",
			},
			&cli.BoolFlag{
				Name:  "analyze",
				Usage: "Run quality metrics over --project and print a report",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Report format for --analyze: text, json, csv",
				Value: "text",
			},
			&cli.BoolFlag{
				Name:  "lsp",
				Usage: "Run the call-hierarchy language server over stdio",
			},
			&cli.BoolFlag{
				Name:  "mcp",
				Usage: "Run the MCP tool server over stdio",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging to a temp file",
			},
		},
		Action: rootAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "al-callhier: %v\n", err)
		os.Exit(1)
	}
}

func rootAction(c *cli.Context) error {
	if c.Bool("lsp") && c.Bool("mcp") {
		return errors.New("--lsp and --mcp are mutually exclusive")
	}
	if c.Bool("analyze") && c.String("project") == "" {
		return errors.New("--analyze requires --project")
	}

	if c.Bool("verbose") {
		logPath, err := debug.InitDebugLogFile()
		if err != nil {
			return fmt.Errorf("init debug log: %w", err)
		}
		defer debug.CloseDebugLog()
		fmt.Fprintf(os.Stderr, "debug log: %s\n", logPath)
	}

	switch {
	case c.Bool("mcp"):
		return runMCP(c)
	case c.Bool("lsp"), c.String("project") == "":
		return runLSP(c)
	case c.Bool("analyze"):
		return runAnalyze(c)
	default:
		return runIndex(c)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	root := c.String("project")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		root = cwd
	}

	cfg, err := config.LoadWithRoot(".lci.kdl", root)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Project.Root = root
	return cfg, nil
}

// runIndex implements plain `--project <path>`: index the tree and report
// counts, without running the analysis pass.
func runIndex(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	idx, err := buildIndex(cfg)
	if err != nil {
		return err
	}

	count := 0
	idx.Graph.IterDefinitions(func(callgraph.QName, callgraph.Definition) { count++ })
	fmt.Printf("indexed %s: %d procedures/triggers/subscribers\n", cfg.Project.Root, count)
	return nil
}
