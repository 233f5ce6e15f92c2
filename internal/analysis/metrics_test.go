package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SShadowS/al-call-hierarchy/internal/config"
)

func TestQualityScore_BelowAllThresholds(t *testing.T) {
	assert.Equal(t, 10.0, QualityScore(1, 5, 1))
}

func TestQualityScore_HighComplexityDropsBelowFive(t *testing.T) {
	assert.Less(t, QualityScore(10, 5, 1), 5.0)
}

func TestQualityScore_LongMethodDropsBelowFive(t *testing.T) {
	assert.Less(t, QualityScore(1, 50, 1), 5.0)
}

func TestQualityScore_TooManyParamsDropsBelowSeven(t *testing.T) {
	assert.Less(t, QualityScore(1, 5, 8), 7.0)
}

func TestQualityScore_ClampedToZero(t *testing.T) {
	assert.Equal(t, 0.0, QualityScore(50, 200, 20))
}

func testThresholds() config.Analysis {
	return config.Analysis{
		ComplexityWarning:  5,
		ComplexityCritical: 10,
		LengthWarning:      20,
		LengthCritical:     50,
		ParamsWarning:      4,
		ParamsCritical:     7,
	}
}

func TestGenerateFindings_CriticalTakesPriorityOverWarning(t *testing.T) {
	m := ProcedureMetrics{
		ObjectName: "Sales Mgt.", ProcedureName: "PostOrder",
		File: "Sales.Codeunit.al", Line: 10,
		Complexity: 12,
	}
	findings := GenerateFindings(m, testThresholds())

	assert.Len(t, findings, 1)
	assert.Equal(t, "high_complexity", findings[0].Category)
	assert.Equal(t, "critical", findings[0].Severity)
}

func TestGenerateFindings_WarningWhenBelowCritical(t *testing.T) {
	m := ProcedureMetrics{
		ObjectName: "Sales Mgt.", ProcedureName: "PostOrder",
		File: "Sales.Codeunit.al", Line: 10,
		Complexity: 6,
	}
	findings := GenerateFindings(m, testThresholds())

	assert.Len(t, findings, 1)
	assert.Equal(t, "warning", findings[0].Severity)
}

func TestGenerateFindings_MultipleCategoriesIndependent(t *testing.T) {
	m := ProcedureMetrics{
		ObjectName: "Sales Mgt.", ProcedureName: "PostOrder",
		File: "Sales.Codeunit.al", Line: 10,
		Complexity: 12, LineCount: 60, ParameterCount: 8,
	}
	findings := GenerateFindings(m, testThresholds())

	assert.Len(t, findings, 3)
}

func TestGenerateFindings_CleanProcedureHasNoFindings(t *testing.T) {
	m := ProcedureMetrics{
		ObjectName: "Sales Mgt.", ProcedureName: "PostOrder",
		File: "Sales.Codeunit.al", Line: 10,
		Complexity: 2, LineCount: 5, ParameterCount: 1,
	}
	assert.Empty(t, GenerateFindings(m, testThresholds()))
}
