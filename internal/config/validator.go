package config

import (
	"errors"
	"fmt"
	"runtime"

	lcierrors "github.com/SShadowS/al-call-hierarchy/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults.
// Returns an error if validation fails.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return lcierrors.NewConfigError("project", "", err)
	}

	if err := v.validateIndexConfig(&cfg.Index); err != nil {
		return lcierrors.NewConfigError("index", "", err)
	}

	if err := v.validatePerformanceConfig(&cfg.Performance); err != nil {
		return lcierrors.NewConfigError("performance", "", err)
	}

	if err := v.validateAnalysisConfig(&cfg.Analysis); err != nil {
		return lcierrors.NewConfigError("analysis", "", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

// validateProjectConfig validates project configuration
func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}

	return nil
}

// validateIndexConfig validates index configuration
func (v *Validator) validateIndexConfig(index *Index) error {
	if index.MaxFileSize <= 0 {
		return fmt.Errorf("MaxFileSize must be positive, got %d", index.MaxFileSize)
	}

	if index.MaxTotalSizeMB <= 0 {
		return fmt.Errorf("MaxTotalSizeMB must be positive, got %d", index.MaxTotalSizeMB)
	}

	if index.MaxFileCount <= 0 {
		return fmt.Errorf("MaxFileCount must be positive, got %d", index.MaxFileCount)
	}

	if index.MaxFileSize > 100*1024*1024 {
		return fmt.Errorf("MaxFileSize should not exceed 100MB, got %d", index.MaxFileSize)
	}

	return nil
}

// validatePerformanceConfig validates performance configuration
func (v *Validator) validatePerformanceConfig(perf *Performance) error {
	if perf.MaxMemoryMB < 100 {
		return fmt.Errorf("MaxMemoryMB must be at least 100MB, got %d", perf.MaxMemoryMB)
	}

	// MaxGoroutines: 0 means auto-detect (will be set by smart defaults)
	if perf.MaxGoroutines < 0 {
		return fmt.Errorf("MaxGoroutines cannot be negative, got %d", perf.MaxGoroutines)
	}

	// ParallelFileWorkers: 0 means auto-detect (will be set by smart defaults)
	if perf.ParallelFileWorkers < 0 {
		return fmt.Errorf("ParallelFileWorkers cannot be negative, got %d", perf.ParallelFileWorkers)
	}

	return nil
}

// validateAnalysisConfig validates the complexity threshold configuration
func (v *Validator) validateAnalysisConfig(a *Analysis) error {
	if a.ComplexityWarning < 0 {
		return fmt.Errorf("ComplexityWarning cannot be negative, got %d", a.ComplexityWarning)
	}
	if a.ComplexityCritical < a.ComplexityWarning {
		return fmt.Errorf("ComplexityCritical (%d) must be >= ComplexityWarning (%d)", a.ComplexityCritical, a.ComplexityWarning)
	}
	if a.LengthWarning < 0 {
		return fmt.Errorf("LengthWarning cannot be negative, got %d", a.LengthWarning)
	}
	if a.LengthCritical < a.LengthWarning {
		return fmt.Errorf("LengthCritical (%d) must be >= LengthWarning (%d)", a.LengthCritical, a.LengthWarning)
	}
	if a.ParamsWarning < 0 {
		return fmt.Errorf("ParamsWarning cannot be negative, got %d", a.ParamsWarning)
	}
	if a.ParamsCritical < a.ParamsWarning {
		return fmt.Errorf("ParamsCritical (%d) must be >= ParamsWarning (%d)", a.ParamsCritical, a.ParamsWarning)
	}
	return nil
}

// setSmartDefaults applies smart defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// Set default MaxGoroutines based on CPU count if not configured
	// Use cores-1 to leave headroom for the system, minimum of 1
	if cfg.Performance.MaxGoroutines == 0 {
		numCPU := runtime.NumCPU()
		cfg.Performance.MaxGoroutines = max(1, numCPU-1)
	}

	// Set default parallel workers to cores-1 to prevent overwhelming the system
	if cfg.Performance.ParallelFileWorkers == 0 {
		numCPU := runtime.NumCPU()
		cfg.Performance.ParallelFileWorkers = max(1, numCPU-1)
	}

	if cfg.Performance.MaxMemoryMB == 0 {
		cfg.Performance.MaxMemoryMB = 1024
	}

	if cfg.Performance.IndexingTimeoutSec == 0 {
		cfg.Performance.IndexingTimeoutSec = 120
	}

	// Enable smart size control by default
	if !cfg.Index.SmartSizeControl {
		cfg.Index.SmartSizeControl = true
	}

	if cfg.Index.PriorityMode == "" {
		cfg.Index.PriorityMode = "recent"
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
