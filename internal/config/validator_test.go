package config

import (
	"testing"
)

func TestValidateAndSetDefaults(t *testing.T) {
	cfg := &Config{
		Project: Project{
			Root: "/test/root",
			Name: "test-project",
		},
		Index: Index{
			MaxFileSize:    1024 * 1024,
			MaxTotalSizeMB: 1000,
			MaxFileCount:   10000,
		},
		Performance: Performance{
			MaxMemoryMB:         2048,
			MaxGoroutines:       1, // Set to valid value to pass validation
			ParallelFileWorkers: 1, // Set to valid value to pass validation
		},
		Analysis: Analysis{
			ComplexityWarning:  5,
			ComplexityCritical: 10,
			LengthWarning:      20,
			LengthCritical:     50,
			ParamsWarning:      4,
			ParamsCritical:     7,
		},
	}

	validator := NewValidator()
	err := validator.ValidateAndSetDefaults(cfg)
	if err != nil {
		t.Fatalf("ValidateAndSetDefaults failed: %v", err)
	}

	if cfg.Performance.MaxGoroutines == 0 {
		t.Errorf("MaxGoroutines should have been set to CPU count")
	}

	if cfg.Performance.ParallelFileWorkers == 0 {
		t.Errorf("ParallelFileWorkers should have been set to CPU count")
	}

	if !cfg.Index.SmartSizeControl {
		t.Errorf("SmartSizeControl should be enabled by default")
	}

	if cfg.Index.PriorityMode == "" {
		t.Errorf("PriorityMode should have a default value")
	}
}

func TestValidateProjectConfig(t *testing.T) {
	validator := NewValidator()

	err := validator.validateProjectConfig(&Project{
		Root: "/test/root",
		Name: "test-project",
	})
	if err != nil {
		t.Errorf("Expected no error for valid config, got %v", err)
	}

	err = validator.validateProjectConfig(&Project{
		Root: "",
		Name: "test-project",
	})
	if err == nil {
		t.Errorf("Expected error for empty root")
	}
}

func TestValidateIndexConfig(t *testing.T) {
	validator := NewValidator()

	err := validator.validateIndexConfig(&Index{
		MaxFileSize:    1024 * 1024,
		MaxTotalSizeMB: 1000,
		MaxFileCount:   10000,
	})
	if err != nil {
		t.Errorf("Expected no error for valid config, got %v", err)
	}

	err = validator.validateIndexConfig(&Index{
		MaxFileSize:    0,
		MaxTotalSizeMB: 1000,
		MaxFileCount:   10000,
	})
	if err == nil {
		t.Errorf("Expected error for zero MaxFileSize")
	}

	err = validator.validateIndexConfig(&Index{
		MaxFileSize:    1024 * 1024,
		MaxTotalSizeMB: 0,
		MaxFileCount:   10000,
	})
	if err == nil {
		t.Errorf("Expected error for zero MaxTotalSizeMB")
	}

	err = validator.validateIndexConfig(&Index{
		MaxFileSize:    1024 * 1024,
		MaxTotalSizeMB: 1000,
		MaxFileCount:   0,
	})
	if err == nil {
		t.Errorf("Expected error for zero MaxFileCount")
	}

	err = validator.validateIndexConfig(&Index{
		MaxFileSize:    200 * 1024 * 1024,
		MaxTotalSizeMB: 1000,
		MaxFileCount:   10000,
	})
	if err == nil {
		t.Errorf("Expected error for MaxFileSize > 100MB")
	}
}

func TestValidatePerformanceConfig(t *testing.T) {
	validator := NewValidator()

	err := validator.validatePerformanceConfig(&Performance{
		MaxMemoryMB:         2048,
		MaxGoroutines:       4,
		ParallelFileWorkers: 8,
	})
	if err != nil {
		t.Errorf("Expected no error for valid config, got %v", err)
	}

	err = validator.validatePerformanceConfig(&Performance{
		MaxMemoryMB:         50,
		MaxGoroutines:       4,
		ParallelFileWorkers: 8,
	})
	if err == nil {
		t.Errorf("Expected error for MaxMemoryMB < 100")
	}

	err = validator.validatePerformanceConfig(&Performance{
		MaxMemoryMB:         2048,
		MaxGoroutines:       0,
		ParallelFileWorkers: 8,
	})
	if err != nil {
		t.Errorf("Expected no error for MaxGoroutines = 0 (auto-detect), got %v", err)
	}

	err = validator.validatePerformanceConfig(&Performance{
		MaxMemoryMB:         2048,
		MaxGoroutines:       4,
		ParallelFileWorkers: 0,
	})
	if err != nil {
		t.Errorf("Expected no error for ParallelFileWorkers = 0 (auto-detect), got %v", err)
	}

	err = validator.validatePerformanceConfig(&Performance{
		MaxMemoryMB:         2048,
		MaxGoroutines:       -1,
		ParallelFileWorkers: 8,
	})
	if err == nil {
		t.Errorf("Expected error for MaxGoroutines = -1")
	}

	err = validator.validatePerformanceConfig(&Performance{
		MaxMemoryMB:         2048,
		MaxGoroutines:       4,
		ParallelFileWorkers: -1,
	})
	if err == nil {
		t.Errorf("Expected error for ParallelFileWorkers = -1")
	}
}

func TestValidateAnalysisConfig(t *testing.T) {
	validator := NewValidator()

	err := validator.validateAnalysisConfig(&Analysis{
		ComplexityWarning: 5, ComplexityCritical: 10,
		LengthWarning: 20, LengthCritical: 50,
		ParamsWarning: 4, ParamsCritical: 7,
	})
	if err != nil {
		t.Errorf("Expected no error for valid config, got %v", err)
	}

	err = validator.validateAnalysisConfig(&Analysis{ComplexityWarning: -1, ComplexityCritical: 20})
	if err == nil {
		t.Errorf("Expected error for negative ComplexityWarning")
	}

	err = validator.validateAnalysisConfig(&Analysis{ComplexityWarning: 20, ComplexityCritical: 10})
	if err == nil {
		t.Errorf("Expected error for ComplexityCritical < ComplexityWarning")
	}

	err = validator.validateAnalysisConfig(&Analysis{ComplexityWarning: 5, ComplexityCritical: 10, LengthWarning: -1})
	if err == nil {
		t.Errorf("Expected error for negative LengthWarning")
	}

	err = validator.validateAnalysisConfig(&Analysis{ComplexityWarning: 5, ComplexityCritical: 10, LengthWarning: 50, LengthCritical: 20})
	if err == nil {
		t.Errorf("Expected error for LengthCritical < LengthWarning")
	}

	err = validator.validateAnalysisConfig(&Analysis{ComplexityWarning: 5, ComplexityCritical: 10, ParamsWarning: -1})
	if err == nil {
		t.Errorf("Expected error for negative ParamsWarning")
	}

	err = validator.validateAnalysisConfig(&Analysis{ComplexityWarning: 5, ComplexityCritical: 10, ParamsWarning: 7, ParamsCritical: 4})
	if err == nil {
		t.Errorf("Expected error for ParamsCritical < ParamsWarning")
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := &Config{
		Project: Project{
			Root: "/test/root",
			Name: "test-project",
		},
		Index: Index{
			MaxFileSize:    1024 * 1024,
			MaxTotalSizeMB: 1000,
			MaxFileCount:   10000,
		},
		Performance: Performance{
			MaxMemoryMB:         2048,
			MaxGoroutines:       1,
			ParallelFileWorkers: 1,
		},
		Analysis: Analysis{
			ComplexityWarning:  5,
			ComplexityCritical: 10,
			LengthWarning:      20,
			LengthCritical:     50,
			ParamsWarning:      4,
			ParamsCritical:     7,
		},
	}

	err := ValidateConfig(cfg)
	if err != nil {
		t.Fatalf("ValidateConfig failed: %v", err)
	}

	invalidCfg := &Config{
		Project: Project{
			Root: "",
			Name: "test-project",
		},
	}

	err = ValidateConfig(invalidCfg)
	if err == nil {
		t.Errorf("Expected error for invalid config")
	}
}

func TestSetSmartDefaults(t *testing.T) {
	cfg := &Config{
		Project: Project{
			Root: "/test/root",
			Name: "test-project",
		},
		Index: Index{
			MaxFileSize:    1024 * 1024,
			MaxTotalSizeMB: 1000,
			MaxFileCount:   10000,
		},
		Performance: Performance{
			MaxMemoryMB: 0, // Should be set
		},
	}

	validator := NewValidator()
	validator.setSmartDefaults(cfg)

	if cfg.Performance.MaxMemoryMB == 0 {
		t.Errorf("MaxMemoryMB should have been set")
	}

	if cfg.Performance.IndexingTimeoutSec == 0 {
		t.Errorf("IndexingTimeoutSec should have been set")
	}

	if cfg.Index.PriorityMode == "" {
		t.Errorf("PriorityMode should have been set")
	}
}

func BenchmarkValidateAndSetDefaults(b *testing.B) {
	cfg := &Config{
		Project: Project{
			Root: "/test/root",
			Name: "test-project",
		},
		Index: Index{
			MaxFileSize:    1024 * 1024,
			MaxTotalSizeMB: 1000,
			MaxFileCount:   10000,
		},
		Performance: Performance{
			MaxMemoryMB: 2048,
		},
	}

	validator := NewValidator()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		testCfg := *cfg
		_ = validator.ValidateAndSetDefaults(&testCfg)
	}
}
