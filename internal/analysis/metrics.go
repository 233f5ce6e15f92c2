package analysis

import (
	"fmt"

	"github.com/SShadowS/al-call-hierarchy/internal/config"
)

// QualityScore computes the 0-10 quality score for a procedure with the
// given complexity, line count, and parameter count. Pinned to the
// original analyzer's formula (original_source/src/analysis.rs,
// calculate_quality_score): complexity, length, and parameter-count
// penalties are independent and additive, then the result is clamped to
// [0, 10].
func QualityScore(complexity, lineCount, params uint32) float64 {
	score := 10.0

	switch {
	case complexity > 4:
		score -= 1.6 + float64(complexity-4)*1.2
	case complexity > 2:
		score -= float64(complexity-2) * 0.8
	}

	switch {
	case lineCount > 15:
		score -= 1.5 + float64(lineCount-15)*0.15
	case lineCount > 10:
		score -= float64(lineCount-10) * 0.3
	}

	switch {
	case params > 4:
		score -= 1.0 + float64(params-4)*0.8
	case params > 2:
		score -= float64(params-2) * 0.5
	}

	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// GenerateFindings checks m against thresholds and returns at most one
// finding per category (critical takes priority over warning within a
// category, matching the original analyzer's if/else-if chain).
func GenerateFindings(m ProcedureMetrics, thresholds config.Analysis) []Finding {
	location := fmt.Sprintf("%s:%d", m.File, m.Line)
	procedure := fmt.Sprintf("%s.%s", m.ObjectName, m.ProcedureName)

	var findings []Finding

	switch {
	case m.Complexity >= uint32(thresholds.ComplexityCritical):
		findings = append(findings, Finding{
			Category: "high_complexity", Severity: "critical",
			Location: location, Procedure: procedure,
			Description: fmt.Sprintf("Cyclomatic complexity %d exceeds critical threshold of %d",
				m.Complexity, thresholds.ComplexityCritical),
		})
	case m.Complexity >= uint32(thresholds.ComplexityWarning):
		findings = append(findings, Finding{
			Category: "high_complexity", Severity: "warning",
			Location: location, Procedure: procedure,
			Description: fmt.Sprintf("Cyclomatic complexity %d exceeds warning threshold of %d",
				m.Complexity, thresholds.ComplexityWarning),
		})
	}

	switch {
	case m.LineCount >= uint32(thresholds.LengthCritical):
		findings = append(findings, Finding{
			Category: "long_method", Severity: "critical",
			Location: location, Procedure: procedure,
			Description: fmt.Sprintf("Method length %d lines exceeds critical threshold of %d",
				m.LineCount, thresholds.LengthCritical),
		})
	case m.LineCount >= uint32(thresholds.LengthWarning):
		findings = append(findings, Finding{
			Category: "long_method", Severity: "warning",
			Location: location, Procedure: procedure,
			Description: fmt.Sprintf("Method length %d lines exceeds warning threshold of %d",
				m.LineCount, thresholds.LengthWarning),
		})
	}

	switch {
	case m.ParameterCount >= uint32(thresholds.ParamsCritical):
		findings = append(findings, Finding{
			Category: "too_many_parameters", Severity: "critical",
			Location: location, Procedure: procedure,
			Description: fmt.Sprintf("Parameter count %d exceeds critical threshold of %d",
				m.ParameterCount, thresholds.ParamsCritical),
		})
	case m.ParameterCount >= uint32(thresholds.ParamsWarning):
		findings = append(findings, Finding{
			Category: "too_many_parameters", Severity: "warning",
			Location: location, Procedure: procedure,
			Description: fmt.Sprintf("Parameter count %d exceeds warning threshold of %d",
				m.ParameterCount, thresholds.ParamsWarning),
		})
	}

	return findings
}
