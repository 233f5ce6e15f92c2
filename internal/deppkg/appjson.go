package deppkg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AppDependency is a single entry in app.json's "dependencies" array.
type AppDependency struct {
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
	Version   string `json:"version"`
}

type appJSON struct {
	Dependencies []AppDependency `json:"dependencies"`
}

// ParseAppJSON reads and parses a project's app.json for its declared
// dependencies. Only the "dependencies" field is consumed; every other
// app.json field (id, name, idRanges, ...) is ignored.
//
// encoding/json is used here with no ecosystem substitute: none of the
// example repos vendor a general-purpose JSON decoder (google/jsonschema-go
// validates schemas, it does not parse app manifests).
func ParseAppJSON(path string) ([]AppDependency, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deppkg: read %s: %w", path, err)
	}
	var parsed appJSON
	if err := json.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("deppkg: parse %s: %w", path, err)
	}
	return parsed.Dependencies, nil
}

// FindAlPackagesFolder returns the project's .alpackages directory, if it
// exists.
func FindAlPackagesFolder(projectRoot string) (string, bool) {
	dir := filepath.Join(projectRoot, ".alpackages")
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}

// FindMatchingApp finds the highest compatible-version .app file for dep
// inside alpackages. File names follow the convention
// "Publisher_Name_Version.app".
func FindMatchingApp(alpackages string, dep AppDependency) (string, bool) {
	entries, err := os.ReadDir(alpackages)
	if err != nil {
		return "", false
	}

	prefix := dep.Publisher + "_" + dep.Name + "_"

	type candidate struct {
		path    string
		version string
	}
	var candidates []candidate

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".app" {
			continue
		}
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		versionPart := strings.TrimSuffix(name[len(prefix):], ".app")
		if !IsVersionCompatible(dep.Version, versionPart) {
			continue
		}
		candidates = append(candidates, candidate{path: filepath.Join(alpackages, name), version: versionPart})
	}

	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, j int) bool {
		return CompareVersions(candidates[i].version, candidates[j].version) < 0
	})
	return candidates[0].path, true
}
