package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/SShadowS/al-call-hierarchy/internal/analysis"
	"github.com/SShadowS/al-call-hierarchy/internal/config"
	"github.com/SShadowS/al-call-hierarchy/internal/indexer"
)

// buildIndex indexes cfg.Project.Root into a fresh Indexer, including any
// resolvable .alpackages dependencies.
func buildIndex(cfg *config.Config) (*indexer.Indexer, error) {
	idx := indexer.New(cfg)
	if err := idx.IndexDirectory(context.Background(), cfg.Project.Root); err != nil {
		return nil, fmt.Errorf("index %s: %w", cfg.Project.Root, err)
	}
	if err := idx.LoadDependencies(cfg.Project.Root); err != nil {
		fmt.Fprintf(os.Stderr, "warning: loading dependency packages: %v\n", err)
	}
	return idx, nil
}

// runAnalyze implements `--project <path> --analyze [--format text|json|csv]`.
func runAnalyze(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	idx, err := buildIndex(cfg)
	if err != nil {
		return err
	}

	result := analysis.AnalyzeGraph(idx.Graph, cfg.Project.Root, cfg.Analysis)

	switch c.String("format") {
	case "json":
		return writeAnalyzeJSON(result)
	case "csv":
		return writeAnalyzeCSV(result)
	case "text", "":
		return writeAnalyzeText(result)
	default:
		return fmt.Errorf("unknown --format %q (want text, json, or csv)", c.String("format"))
	}
}

func writeAnalyzeJSON(result analysis.Result) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func writeAnalyzeCSV(result analysis.Result) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"object_type", "object_name", "procedure_name", "file", "line",
		"complexity", "line_count", "parameter_count", "quality_score"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, m := range result.Metrics {
		row := []string{
			m.ObjectType, m.ObjectName, m.ProcedureName, m.File,
			fmt.Sprintf("%d", m.Line), fmt.Sprintf("%d", m.Complexity),
			fmt.Sprintf("%d", m.LineCount), fmt.Sprintf("%d", m.ParameterCount),
			fmt.Sprintf("%.2f", m.QualityScore),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// writeAnalyzeText prints the top-20 procedures by complexity plus a
// summary line, per the analyzer's text report contract.
func writeAnalyzeText(result analysis.Result) error {
	ranked := make([]analysis.ProcedureMetrics, len(result.Metrics))
	copy(ranked, result.Metrics)
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Complexity > ranked[j].Complexity
	})
	if len(ranked) > 20 {
		ranked = ranked[:20]
	}

	fmt.Println("Top procedures by complexity")
	fmt.Println("-----------------------------")
	for _, m := range ranked {
		fmt.Printf("%2d  %-40s %s:%d  (quality %.1f, %d lines, %d params)\n",
			m.Complexity, m.ObjectName+"."+m.ProcedureName, m.File, m.Line,
			m.QualityScore, m.LineCount, m.ParameterCount)
	}

	s := result.Summary
	fmt.Println()
	fmt.Println("Summary")
	fmt.Println("-------")
	fmt.Printf("procedures: %d  avg complexity: %.2f  avg quality: %.2f  critical: %d  warning: %d\n",
		s.TotalProcedures, s.AvgComplexity, s.AvgQualityScore, s.CriticalCount, s.WarningCount)
	return nil
}
