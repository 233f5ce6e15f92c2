package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 5, cfg.Analysis.ComplexityWarning)
	assert.Equal(t, 10, cfg.Analysis.ComplexityCritical)
	assert.Equal(t, 20, cfg.Analysis.LengthWarning)
	assert.Equal(t, 50, cfg.Analysis.LengthCritical)
	assert.Equal(t, 4, cfg.Analysis.ParamsWarning)
	assert.Equal(t, 7, cfg.Analysis.ParamsCritical)
	assert.Equal(t, "recent", cfg.Index.PriorityMode)
}

func TestParseKDL_AnalysisConfig(t *testing.T) {
	kdlContent := `
analysis {
    complexity_warning 15
    complexity_critical 30
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 15, cfg.Analysis.ComplexityWarning)
	assert.Equal(t, 30, cfg.Analysis.ComplexityCritical)
}

func TestParseKDL_PartialAnalysisConfig(t *testing.T) {
	kdlContent := `
analysis {
    complexity_warning 12
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 12, cfg.Analysis.ComplexityWarning)
	assert.Equal(t, 10, cfg.Analysis.ComplexityCritical)
}

func TestParseKDL_FullConfig(t *testing.T) {
	kdlContent := `
project {
    root "."
    name "test-project"
}

index {
    max_file_size "5MB"
    max_file_count 5000
    respect_gitignore true
}

performance {
    max_memory_mb 256
    max_goroutines 8
}

analysis {
    complexity_warning 8
    complexity_critical 16
    length_warning 25
    length_critical 60
    params_warning 5
    params_critical 9
}

include "**/*.al"
exclude "**/.git/**" "**/node_modules/**"
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "test-project", cfg.Project.Name)
	assert.Equal(t, int64(5*1024*1024), cfg.Index.MaxFileSize)
	assert.Equal(t, 5000, cfg.Index.MaxFileCount)
	assert.Equal(t, 256, cfg.Performance.MaxMemoryMB)
	assert.Equal(t, 8, cfg.Performance.MaxGoroutines)
	assert.Equal(t, 8, cfg.Analysis.ComplexityWarning)
	assert.Equal(t, 16, cfg.Analysis.ComplexityCritical)
	assert.Equal(t, 25, cfg.Analysis.LengthWarning)
	assert.Equal(t, 60, cfg.Analysis.LengthCritical)
	assert.Equal(t, 5, cfg.Analysis.ParamsWarning)
	assert.Equal(t, 9, cfg.Analysis.ParamsCritical)
	assert.Contains(t, cfg.Include, "**/*.al")
	assert.Contains(t, cfg.Exclude, "**/.git/**")
	assert.Contains(t, cfg.Exclude, "**/node_modules/**")
}
