package deppkg

import (
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("deppkg")

// ResolvedDependency pairs a declared app.json dependency with its located
// .app file and parsed symbol table.
type ResolvedDependency struct {
	Dependency AppDependency
	AppPath    string
	Package    Package
}

// ResolveAll reads projectRoot's app.json, locates each declared
// dependency's best-matching .app file in .alpackages, and extracts its
// symbol table. A dependency that cannot be located or parsed is logged and
// skipped rather than failing the whole resolution.
func ResolveAll(projectRoot string) ([]ResolvedDependency, error) {
	appJSONPath := filepath.Join(projectRoot, "app.json")
	if _, err := os.Stat(appJSONPath); err != nil {
		log.Debugf("no app.json at %s", projectRoot)
		return nil, nil
	}

	deps, err := ParseAppJSON(appJSONPath)
	if err != nil {
		return nil, err
	}
	if len(deps) == 0 {
		log.Debug("no dependencies declared in app.json")
		return nil, nil
	}

	alpackages, ok := FindAlPackagesFolder(projectRoot)
	if !ok {
		log.Warningf("no .alpackages folder found at %s", projectRoot)
		return nil, nil
	}

	log.Infof("resolving %d dependencies from %s", len(deps), alpackages)

	var resolved []ResolvedDependency
	for _, dep := range deps {
		appPath, found := FindMatchingApp(alpackages, dep)
		if !found {
			log.Warningf("could not find matching .app for %s %s (publisher: %s)", dep.Name, dep.Version, dep.Publisher)
			continue
		}

		pkg, err := Extract(appPath)
		if err != nil {
			log.Warningf("failed to parse %s: %v", appPath, err)
			continue
		}

		log.Infof("loaded %s v%s (%d objects)", pkg.Metadata.Name, pkg.Metadata.Version, len(pkg.Objects))
		resolved = append(resolved, ResolvedDependency{Dependency: dep, AppPath: appPath, Package: pkg})
	}

	return resolved, nil
}
