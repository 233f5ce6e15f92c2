package config

import (
	"os"
	"runtime"
)

// Config is the merged project configuration: defaults, overridden by
// ~/.lci.kdl (global), overridden by <project>/.lci.kdl (project-local).
type Config struct {
	Version              int
	Project              Project
	Index                Index
	Performance          Performance
	Analysis             Analysis
	Include              []string
	Exclude              []string
	PropagationConfigDir string
}

type Project struct {
	Root string
	Name string
}

type Index struct {
	MaxFileSize      int64
	MaxTotalSizeMB   int64
	MaxFileCount     int
	FollowSymlinks   bool
	SmartSizeControl bool
	PriorityMode     string // "recent", "small", "important"
	RespectGitignore bool   // Process .gitignore files for additional exclusions
	WatchMode        bool   // Enable file system watching for automatic reindexing
	WatchDebounceMs  int    // Debounce time for file change events
}

type Performance struct {
	MaxMemoryMB         int // Maximum memory usage in MB
	MaxGoroutines       int // Maximum number of goroutines for indexing
	DebounceMs          int // Debounce time in milliseconds for file change events
	ParallelFileWorkers int // 0 = auto-detect (NumCPU)
	IndexingTimeoutSec  int // Timeout for indexing operations in seconds
	StartupDelayMs      int // Delay before auto-indexing starts
}

// Analysis holds the quality-finding thresholds: cyclomatic complexity,
// procedure line count, and parameter count. Pinned to the original
// analyzer's defaults; the analysis node of a .lci.kdl file may override them.
type Analysis struct {
	ComplexityWarning  int // complexity at or above this emits a warning finding
	ComplexityCritical int // complexity at or above this emits a critical finding
	LengthWarning      int // line count at or above this emits a warning finding
	LengthCritical     int // line count at or above this emits a critical finding
	ParamsWarning      int // parameter count at or above this emits a warning finding
	ParamsCritical     int // parameter count at or above this emits a critical finding
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	// Step 1: Load global base config from ~/.lci.kdl (if exists)
	homeDir, err := os.UserHomeDir()
	var baseConfig *Config
	if err == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	// Step 2: Load project-specific config from project directory
	var projectConfig *Config
	if kdlCfg, err := LoadKDL(searchDir); err == nil && kdlCfg != nil {
		projectConfig = kdlCfg
	} else if err != nil {
		return nil, err
	}

	// Step 3: Merge configs (project overrides base, but preserve base exclusions)
	if baseConfig != nil && projectConfig != nil {
		return mergeConfigs(baseConfig, projectConfig), nil
	} else if projectConfig != nil {
		return projectConfig, nil
	} else if baseConfig != nil {
		baseConfig.Project.Root = searchDir
		return baseConfig, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	cfg := &Config{
		Version: 1,
		Project: Project{
			Root: cwd,
		},
		Index: Index{
			MaxFileSize:      10 * 1024 * 1024,
			MaxTotalSizeMB:   500,
			MaxFileCount:     10000,
			FollowSymlinks:   false,
			SmartSizeControl: true,
			PriorityMode:     "recent",
			RespectGitignore: true,
			WatchMode:        true,
			WatchDebounceMs:  300,
		},
		Performance: Performance{
			MaxMemoryMB:         500,
			MaxGoroutines:       runtime.NumCPU(),
			DebounceMs:          100,
			ParallelFileWorkers: 0,
			IndexingTimeoutSec:  120,
			StartupDelayMs:      1500,
		},
		Analysis: Analysis{
			ComplexityWarning:  5,
			ComplexityCritical: 10,
			LengthWarning:      20,
			LengthCritical:     50,
			ParamsWarning:      4,
			ParamsCritical:     7,
		},
		Include: []string{"**/*.al"},
		Exclude: []string{
			"**/.git/**",
			"**/.*/**",
			"**/.alpackages/**",
			"**/.snapshots/**",
			"**/.alcache/**",
			"**/node_modules/**",
			"**/bin/**",
			"**/obj/**",
			"**/*.g.al",
		},
	}

	cfg.EnrichExclusionsWithBuildArtifacts()

	return cfg, nil
}

// mergeConfigs merges a base config with a project config.
// Project config takes precedence, but base exclusions are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		excludeMap := make(map[string]bool)
		for _, pattern := range base.Exclude {
			excludeMap[pattern] = true
		}
		for _, pattern := range project.Exclude {
			excludeMap[pattern] = true
		}
		merged.Exclude = make([]string, 0, len(excludeMap))
		for pattern := range excludeMap {
			merged.Exclude = append(merged.Exclude, pattern)
		}
	}

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	return &merged
}

// EnrichExclusionsWithBuildArtifacts detects build output directories and
// adds them to the exclusion list.
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}

	detector := NewBuildArtifactDetector(c.Project.Root)
	detectedPatterns := detector.DetectOutputDirectories()

	if len(detectedPatterns) > 0 {
		c.Exclude = append(c.Exclude, detectedPatterns...)
		c.Exclude = DeduplicatePatterns(c.Exclude)
	}
}
