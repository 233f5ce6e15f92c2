// Package analysis implements C5: the quality-score/findings computation
// over an indexed call graph, and the read-only query layer the LSP and
// MCP surfaces share (call hierarchy, code lens, diagnostics).
//
// The quality-score formula and finding thresholds are pinned to the
// original analyzer's analysis module (original_source/src/analysis.rs);
// the JSON result shape mirrors it directly so CLI `--format json` output
// is a straightforward re-expression of the same structure.
package analysis

import (
	"sort"

	"github.com/SShadowS/al-call-hierarchy/internal/callgraph"
	"github.com/SShadowS/al-call-hierarchy/internal/config"
	"github.com/SShadowS/al-call-hierarchy/pkg/pathutil"
)

// ProcedureMetrics is one procedure/trigger's computed metrics.
type ProcedureMetrics struct {
	ObjectType     string  `json:"object_type"`
	ObjectName     string  `json:"object_name"`
	ProcedureName  string  `json:"procedure_name"`
	File           string  `json:"file"`
	Line           uint32  `json:"line"`
	Complexity     uint32  `json:"complexity"`
	LineCount      uint32  `json:"line_count"`
	ParameterCount uint32  `json:"parameter_count"`
	QualityScore   float64 `json:"quality_score"`
}

// Finding is a single threshold violation detected on a procedure.
type Finding struct {
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Location    string `json:"location"`
	Procedure   string `json:"procedure"`
	Description string `json:"description"`
}

// Summary aggregates metrics and findings across an analysis run.
type Summary struct {
	TotalProcedures int     `json:"total_procedures"`
	AvgComplexity   float64 `json:"avg_complexity"`
	AvgQualityScore float64 `json:"avg_quality_score"`
	CriticalCount   int     `json:"critical_findings"`
	WarningCount    int     `json:"warning_findings"`
}

// Result is the complete output of an analysis run.
type Result struct {
	Metrics  []ProcedureMetrics `json:"metrics"`
	Findings []Finding          `json:"findings"`
	Summary  Summary            `json:"summary"`
}

// AnalyzeGraph computes metrics and findings for every local definition in
// graph, relative to rootDir for display purposes.
func AnalyzeGraph(graph *callgraph.Graph, rootDir string, thresholds config.Analysis) Result {
	var metrics []ProcedureMetrics

	graph.IterDefinitions(func(q callgraph.QName, d callgraph.Definition) {
		objName, _ := graph.Resolve(q.Object)
		procName, _ := graph.Resolve(q.Procedure)

		metrics = append(metrics, ProcedureMetrics{
			ObjectType:     d.ObjectKind.String(),
			ObjectName:     objName,
			ProcedureName:  procName,
			File:           pathutil.ToRelative(d.File.String(), rootDir),
			Line:           d.Range.Start.Line + 1,
			Complexity:     d.Complexity,
			LineCount:      d.LineCount,
			ParameterCount: d.ParameterCount,
			QualityScore:   QualityScore(d.Complexity, d.LineCount, d.ParameterCount),
		})
	})

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].File != metrics[j].File {
			return metrics[i].File < metrics[j].File
		}
		return metrics[i].Line < metrics[j].Line
	})

	var findings []Finding
	for _, m := range metrics {
		findings = append(findings, GenerateFindings(m, thresholds)...)
	}

	return Result{
		Metrics:  metrics,
		Findings: findings,
		Summary:  BuildSummary(metrics, findings),
	}
}

// BuildSummary computes aggregate statistics over metrics and findings.
func BuildSummary(metrics []ProcedureMetrics, findings []Finding) Summary {
	total := len(metrics)
	if total == 0 {
		return Summary{}
	}

	var complexitySum, qualitySum float64
	for _, m := range metrics {
		complexitySum += float64(m.Complexity)
		qualitySum += m.QualityScore
	}

	var critical, warning int
	for _, f := range findings {
		switch f.Severity {
		case "critical":
			critical++
		case "warning":
			warning++
		}
	}

	return Summary{
		TotalProcedures: total,
		AvgComplexity:   complexitySum / float64(total),
		AvgQualityScore: qualitySum / float64(total),
		CriticalCount:   critical,
		WarningCount:    warning,
	}
}
