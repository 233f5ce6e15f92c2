// Package indexer implements C4, the incremental indexer: a batch walk and
// parallel parse over a project's .al files, folded into a callgraph.Graph
// in the order the graph's resolution priority depends on, plus
// content-hash-gated reindexing and a recursive filesystem watcher.
//
// Grounded on the original indexer's pipeline/watcher split: a FileScanner
// equivalent (walk + glob filtering) feeds a worker pool of parsers, and a
// debounced fsnotify watcher drives the same single-file reindex path used
// by the batch pipeline.
package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/SShadowS/al-call-hierarchy/internal/alsyntax"
	"github.com/SShadowS/al-call-hierarchy/internal/callgraph"
	"github.com/SShadowS/al-call-hierarchy/internal/config"
	"github.com/SShadowS/al-call-hierarchy/internal/debug"
	"github.com/SShadowS/al-call-hierarchy/internal/deppkg"
	"github.com/SShadowS/al-call-hierarchy/internal/symtab"
)

var log = commonlog.GetLogger("indexer")

// Indexer owns a callgraph.Graph and the pipeline that keeps it in sync
// with a directory of .al source files.
type Indexer struct {
	Graph  *callgraph.Graph
	config *config.Config

	extractorPool sync.Pool

	hashMu    sync.Mutex
	fileHash  map[string]uint64
	dependencies []deppkg.ResolvedDependency

	watcher *fileWatcher
}

// New creates an Indexer for cfg, with an empty call graph.
func New(cfg *config.Config) *Indexer {
	idx := &Indexer{
		Graph:    callgraph.New(),
		config:   cfg,
		fileHash: make(map[string]uint64),
	}
	idx.extractorPool.New = func() interface{} {
		e, err := alsyntax.NewExtractor()
		if err != nil {
			// The pool contract has no way to return an error; a worker that
			// draws a nil extractor skips its file and logs instead of
			// panicking the whole group.
			log.Errorf("failed to construct extractor: %v", err)
			return nil
		}
		return e
	}
	return idx
}

// Stats summarizes the current state of the graph for CLI/LSP reporting.
type Stats struct {
	FilesIndexed int
	Definitions  int
	CallSites    int
	ExternalDefs int
	Dependencies int
}

// Stats snapshots counters from the graph and the dependency set.
func (idx *Indexer) Stats() Stats {
	idx.hashMu.Lock()
	files := len(idx.fileHash)
	deps := len(idx.dependencies)
	idx.hashMu.Unlock()
	return Stats{
		FilesIndexed: files,
		Definitions:  idx.Graph.DefinitionCount(),
		CallSites:    idx.Graph.CallSiteCount(),
		ExternalDefs: idx.Graph.ExternalDefinitionCount(),
		Dependencies: deps,
	}
}

// IndexDirectory walks root, parses every included .al file in parallel,
// and folds each result into the graph sequentially. Dependency packages
// declared in root/app.json are loaded first so that external-object
// resolution (call-resolution priority 2) is available while folding.
func (idx *Indexer) IndexDirectory(ctx context.Context, root string) error {
	if err := idx.LoadDependencies(root); err != nil {
		log.Warningf("dependency resolution failed for %s: %v", root, err)
	}

	paths, err := idx.discoverFiles(root)
	if err != nil {
		return fmt.Errorf("indexer: walk %s: %w", root, err)
	}
	debug.LogIndexing("discovered %d .al files under %s\n", len(paths), root)

	type parseResult struct {
		path string
		pf   alsyntax.ParsedFile
		hash uint64
		err  error
	}
	results := make([]parseResult, len(paths))

	limit := idx.config.Performance.ParallelFileWorkers
	if limit <= 0 {
		limit = idx.config.Performance.MaxGoroutines
	}
	if limit <= 0 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			pf, hash, perr := idx.parseFile(path)
			results[i] = parseResult{path: path, pf: pf, hash: hash, err: perr}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		if r.err != nil {
			log.Warningf("skipping %s: %v", r.path, r.err)
			continue
		}
		idx.foldFile(r.path, r.pf)
		idx.hashMu.Lock()
		idx.fileHash[r.path] = r.hash
		idx.hashMu.Unlock()
	}

	return nil
}

// discoverFiles walks root, following the project's include/exclude globs
// and skipping symlink cycles the same way the file watcher's recursive
// walk does.
func (idx *Indexer) discoverFiles(root string) ([]string, error) {
	visited := make(map[string]bool)
	var out []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			real, rerr := filepath.EvalSymlinks(path)
			if rerr != nil {
				return nil
			}
			if visited[real] {
				return filepath.SkipDir
			}
			visited[real] = true
			if idx.isExcludedDir(root, path) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(path), ".al") {
			return nil
		}
		if info.Size() > idx.config.Index.MaxFileSize {
			return nil
		}
		if idx.shouldInclude(root, path) {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

func (idx *Indexer) isExcludedDir(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range idx.config.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, rel+"/"); ok {
			return true
		}
	}
	return false
}

func (idx *Indexer) shouldInclude(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range idx.config.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}

	if len(idx.config.Include) == 0 {
		return true
	}
	for _, pattern := range idx.config.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// parseFile reads and parses path using a pooled Extractor, returning the
// content hash alongside the parse result for the skip-reparse check in
// ReindexFile.
func (idx *Indexer) parseFile(path string) (alsyntax.ParsedFile, uint64, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return alsyntax.ParsedFile{}, 0, fmt.Errorf("read: %w", err)
	}
	hash := xxhash.Sum64(source)

	extractorAny := idx.extractorPool.Get()
	extractor, ok := extractorAny.(*alsyntax.Extractor)
	if !ok || extractor == nil {
		return alsyntax.ParsedFile{}, 0, fmt.Errorf("no extractor available")
	}
	defer idx.extractorPool.Put(extractor)

	pf, err := extractor.ParseFile(source)
	if err != nil {
		return alsyntax.ParsedFile{}, 0, fmt.Errorf("parse: %w", err)
	}
	return pf, hash, nil
}

// foldFile folds a single parsed file into the graph in the order
// resolution correctness requires: register the object, then variable
// bindings, then definitions, then call sites.
func (idx *Indexer) foldFile(path string, pf alsyntax.ParsedFile) {
	fileRef := idx.Graph.SharedPath(path)
	objSym := idx.Graph.Intern(pf.ObjectName)
	idx.Graph.RegisterObject(objSym, pf.ObjectKind)

	globalScope := idx.Graph.Intern("")

	for _, v := range pf.Variables {
		if v.TypeKind == "" {
			// Only record/codeunit-typed bindings participate in call
			// resolution; primitive types carry no resolution value.
			continue
		}
		scopeProc := globalScope
		if v.ContainingProcedure != "" {
			scopeProc = idx.Graph.Intern(v.ContainingProcedure)
		}
		scope := callgraph.QName{Object: objSym, Procedure: scopeProc}
		idx.Graph.AddVariableBinding(fileRef, scope, idx.Graph.Intern(v.Name), idx.Graph.Intern(v.TypeName))
	}

	subscribersByProc := make(map[string]alsyntax.ParsedSubscriber, len(pf.Subscribers))
	for _, s := range pf.Subscribers {
		subscribersByProc[s.ProcedureName] = s
	}

	for _, d := range pf.Definitions {
		procSym := idx.Graph.Intern(d.Name)
		q := callgraph.QName{Object: objSym, Procedure: procSym}

		if existing, ok := idx.Graph.GetDefinition(q); ok && existing.File.String() != path {
			log.Warningf("duplicate definition %s.%s in %s, already defined in %s",
				pf.ObjectName, d.Name, path, existing.File.String())
		}

		idx.Graph.AddDefinition(callgraph.Definition{
			File:           fileRef,
			Range:          d.Range,
			ObjectKind:     pf.ObjectKind,
			Object:         objSym,
			Procedure:      procSym,
			Kind:           d.Kind,
			Complexity:     d.Complexity,
			LineCount:      d.LineCount,
			ParameterCount: d.ParameterCount,
		})

		if d.Kind == callgraph.KindEventSubscriber {
			if sub, ok := subscribersByProc[d.Name]; ok {
				idx.Graph.AddEventSubscriber(callgraph.SubscriberRecord{
					QName:        q,
					TargetObject: sub.TargetObject,
					TargetEvent:  sub.TargetEvent,
				})
			}
		}
	}

	for _, c := range pf.Calls {
		callerProc := idx.Graph.Intern(c.ContainingProcedure)
		caller := callgraph.QName{Object: objSym, Procedure: callerProc}

		var calleeObject *symtab.Sym
		if c.HasObject {
			s := idx.Graph.Intern(c.Object)
			calleeObject = &s
		}

		idx.Graph.AddCallSite(caller, callgraph.CallSite{
			File:         fileRef,
			Range:        c.Range,
			Caller:       callerProc,
			CalleeObject: calleeObject,
			CalleeMethod: idx.Graph.Intern(c.Method),
		})
	}
}

// ReindexFile removes any prior state for path and re-parses it if it
// still exists on disk. Idempotent: reindexing a file whose content hash
// has not changed since the last index is a no-op beyond the removal
// check.
func (idx *Indexer) ReindexFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		idx.Graph.RemoveFile(path)
		idx.hashMu.Lock()
		delete(idx.fileHash, path)
		idx.hashMu.Unlock()
		return nil
	}
	if info.IsDir() {
		return nil
	}

	if source, rerr := os.ReadFile(path); rerr == nil {
		idx.hashMu.Lock()
		prevHash, seen := idx.fileHash[path]
		idx.hashMu.Unlock()
		if seen && prevHash == xxhash.Sum64(source) {
			debug.LogIndexing("skipping reindex of unchanged file %s\n", path)
			return nil
		}
	}

	pf, hash, perr := idx.parseFile(path)
	if perr != nil {
		log.Warningf("reindex %s: %v", path, perr)
		return nil
	}

	idx.Graph.RemoveFile(path)
	idx.foldFile(path, pf)

	idx.hashMu.Lock()
	idx.fileHash[path] = hash
	idx.hashMu.Unlock()
	return nil
}

// LoadDependencies resolves root's declared app.json dependencies and
// registers every exported object/method as external definitions so that
// call-resolution priority 2 (known object, here an external one) can fire.
func (idx *Indexer) LoadDependencies(root string) error {
	resolved, err := deppkg.ResolveAll(root)
	if err != nil {
		return err
	}
	idx.hashMu.Lock()
	idx.dependencies = resolved
	idx.hashMu.Unlock()

	for _, dep := range resolved {
		appSym := idx.Graph.Intern(dep.Package.Metadata.Name)
		for _, obj := range dep.Package.Objects {
			objSym := idx.Graph.Intern(obj.Name)
			idx.Graph.RegisterExternalObject(objSym, obj.ObjectKind)
			for _, m := range obj.Methods {
				idx.Graph.AddExternalDefinition(callgraph.ExternalDefinition{
					Source: callgraph.ExternalSource{
						AppName:    appSym,
						AppVersion: dep.Package.Metadata.Version,
					},
					ObjectKind: obj.ObjectKind,
					Object:     objSym,
					Procedure:  idx.Graph.Intern(m.Name),
					Kind:       callgraph.KindProcedure,
				})
			}
		}
	}
	return nil
}
