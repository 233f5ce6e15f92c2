package main

import (
	"flag"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/SShadowS/al-call-hierarchy/internal/analysis"
)

// captureStdout redirects os.Stdout for the duration of fn and returns what
// was written, mirroring the teacher's own preference for exercising CLI
// output through real stdout rather than an injected writer.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	require.NoError(t, w.Close())
	os.Stdout = old

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func newTestContext(t *testing.T, boolFlags map[string]bool, stringFlags map[string]string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for name, val := range boolFlags {
		set.Bool(name, val, "")
	}
	for name, val := range stringFlags {
		set.String(name, val, "")
	}
	return cli.NewContext(nil, set, nil)
}

func TestRootAction_RejectsLSPAndMCPTogether(t *testing.T) {
	c := newTestContext(t, map[string]bool{"lsp": true, "mcp": true}, nil)
	err := rootAction(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestRootAction_RejectsAnalyzeWithoutProject(t *testing.T) {
	c := newTestContext(t, map[string]bool{"analyze": true}, map[string]string{"project": ""})
	err := rootAction(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--analyze requires --project")
}

func TestLoadConfig_DefaultsRootToWorkingDirectory(t *testing.T) {
	tempDir := t.TempDir()
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldDir) }()
	require.NoError(t, os.Chdir(tempDir))

	c := newTestContext(t, nil, map[string]string{"project": ""})
	cfg, err := loadConfig(c)
	require.NoError(t, err)

	resolved, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, resolved, cfg.Project.Root)
}

func TestLoadConfig_UsesExplicitProjectRoot(t *testing.T) {
	tempDir := t.TempDir()
	c := newTestContext(t, nil, map[string]string{"project": tempDir})
	cfg, err := loadConfig(c)
	require.NoError(t, err)
	assert.Equal(t, tempDir, cfg.Project.Root)
}

func sampleAnalysisResult() analysis.Result {
	metrics := []analysis.ProcedureMetrics{
		{
			ObjectType: "Codeunit", ObjectName: "Sales Mgt.", ProcedureName: "DoWork",
			File: "Sales.Codeunit.al", Line: 3, Complexity: 9, LineCount: 40,
			ParameterCount: 2, QualityScore: 0.0,
		},
		{
			ObjectType: "Codeunit", ObjectName: "Sales Mgt.", ProcedureName: "Helper",
			File: "Sales.Codeunit.al", Line: 45, Complexity: 1, LineCount: 3,
			ParameterCount: 0, QualityScore: 10.0,
		},
	}
	return analysis.Result{
		Metrics: metrics,
		Summary: analysis.BuildSummary(metrics, nil),
	}
}

func TestWriteAnalyzeText_ListsProceduresMostComplexFirstPlusSummary(t *testing.T) {
	result := sampleAnalysisResult()

	out := captureStdout(t, func() {
		err := writeAnalyzeText(result)
		require.NoError(t, err)
	})

	doWorkIdx := strings.Index(out, "DoWork")
	helperIdx := strings.Index(out, "Helper")
	require.NotEqual(t, -1, doWorkIdx)
	require.NotEqual(t, -1, helperIdx)
	assert.Less(t, doWorkIdx, helperIdx, "higher-complexity procedure should be listed first")
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "procedures: 2")
}

func TestWriteAnalyzeJSON_EmitsResultShape(t *testing.T) {
	result := sampleAnalysisResult()

	out := captureStdout(t, func() {
		err := writeAnalyzeJSON(result)
		require.NoError(t, err)
	})

	assert.Contains(t, out, `"object_name": "Sales Mgt."`)
	assert.Contains(t, out, `"procedure_name": "DoWork"`)
	assert.Contains(t, out, `"summary"`)
}

func TestWriteAnalyzeCSV_EmitsOneRowPerProcedure(t *testing.T) {
	result := sampleAnalysisResult()

	out := captureStdout(t, func() {
		err := writeAnalyzeCSV(result)
		require.NoError(t, err)
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3) // header + 2 procedures
	assert.Equal(t, "object_type,object_name,procedure_name,file,line,complexity,line_count,parameter_count,quality_score", lines[0])
	assert.Contains(t, lines[1], "DoWork")
	assert.Contains(t, lines[2], "Helper")
}

func TestRunAnalyze_RejectsUnknownFormat(t *testing.T) {
	tempDir := t.TempDir()
	c := newTestContext(t, nil, map[string]string{"project": tempDir, "format": "xml"})
	err := runAnalyze(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown --format")
}
