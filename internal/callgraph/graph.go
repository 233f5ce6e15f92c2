package callgraph

import (
	"strings"
	"sync"

	"github.com/SShadowS/al-call-hierarchy/internal/symtab"
)

// Graph is the call graph index. All mutation happens under a single
// exclusive writer; readers take the read lock for the (short) duration of
// a single query. Zero value is not usable; use New.
type Graph struct {
	mu sync.RWMutex

	pool  *symtab.Pool
	paths *symtab.PathCache

	defs  map[QName]Definition
	sites []*CallSite

	fileSites map[*symtab.PathRef][]CallIdx
	fileDefs  map[*symtab.PathRef][]QName
	fileVars  map[*symtab.PathRef][]QName

	incoming map[QName][]CallIdx
	outgoing map[QName][]CallIdx

	vars map[QName][]VarBinding

	objects         map[symtab.Sym]ObjectKind
	externalObjects map[symtab.Sym]ObjectKind
	externals       map[QName]ExternalDefinition

	// subscribers is keyed by lower(target object) + "\x00" + lower(target
	// event name), per the spec's resolution of the case-sensitivity
	// ambiguity: EventSubscriber target matching follows AL's
	// case-insensitive identifier semantics.
	subscribers map[string][]QName
}

// New creates an empty call graph.
func New() *Graph {
	return &Graph{
		pool:            symtab.NewPool(),
		paths:           symtab.NewPathCache(),
		defs:            make(map[QName]Definition),
		fileSites:       make(map[*symtab.PathRef][]CallIdx),
		fileDefs:        make(map[*symtab.PathRef][]QName),
		fileVars:        make(map[*symtab.PathRef][]QName),
		incoming:        make(map[QName][]CallIdx),
		outgoing:        make(map[QName][]CallIdx),
		vars:            make(map[QName][]VarBinding),
		objects:         make(map[symtab.Sym]ObjectKind),
		externalObjects: make(map[symtab.Sym]ObjectKind),
		externals:       make(map[QName]ExternalDefinition),
		subscribers:     make(map[string][]QName),
	}
}

// Intern interns a string into this graph's symbol pool.
func (g *Graph) Intern(s string) symtab.Sym { return g.pool.Intern(s) }

// GetSymbol looks up a string's symbol without interning it.
func (g *Graph) GetSymbol(s string) (symtab.Sym, bool) { return g.pool.Get(s) }

// Resolve returns the string behind a symbol.
func (g *Graph) Resolve(sym symtab.Sym) (string, bool) { return g.pool.Resolve(sym) }

// SharedPath returns the deduplicated PathRef for a filesystem path.
func (g *Graph) SharedPath(path string) *symtab.PathRef { return g.paths.Get(path) }

// RegisterObject marks obj as a locally-defined object of the given kind.
// Idempotent: registering the same object twice is a no-op after the first
// call (the kind recorded is the first one seen).
func (g *Graph) RegisterObject(obj symtab.Sym, kind ObjectKind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.objects[obj]; !ok {
		g.objects[obj] = kind
	}
}

// RegisterExternalObject marks obj as known only through a dependency
// package. Local registration always takes precedence for resolution.
func (g *Graph) RegisterExternalObject(obj symtab.Sym, kind ObjectKind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.externalObjects[obj]; !ok {
		g.externalObjects[obj] = kind
	}
}

// AddVariableBinding records that, within scope, var is bound to a
// record/codeunit-typed variable of the given type name.
func (g *Graph) AddVariableBinding(file *symtab.PathRef, scope QName, variable, typ symtab.Sym) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, seen := g.vars[scope]; !seen {
		g.fileVars[file] = append(g.fileVars[file], scope)
	}
	g.vars[scope] = append(g.vars[scope], VarBinding{Var: variable, Type: typ})
}

// LookupVariableType returns the type symbol variable is bound to within
// scope, if any.
func (g *Graph) LookupVariableType(scope QName, variable symtab.Sym) (symtab.Sym, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, b := range g.vars[scope] {
		if b.Var == variable {
			return b.Type, true
		}
	}
	return 0, false
}

// AddDefinition inserts d, keyed by (d.Object, d.Procedure). A duplicate
// QName from a different file overwrites (last-write-wins) and logs nothing
// itself — callers that care about duplicate detection across files should
// check GetDefinition before calling AddDefinition and surface a warning;
// the indexer does this (see internal/indexer).
func (g *Graph) AddDefinition(d Definition) {
	g.mu.Lock()
	defer g.mu.Unlock()
	q := QName{Object: d.Object, Procedure: d.Procedure}
	g.defs[q] = d
	g.fileDefs[d.File] = append(g.fileDefs[d.File], q)

	if d.Kind == KindEventSubscriber {
		// Target linkage is attached separately via AddEventSubscriber once
		// the extractor has parsed the attribute arguments; nothing to do
		// here beyond the definition itself.
		_ = q
	}
}

// AddEventSubscriber links a previously-added EventSubscriber definition to
// its declared target, matched case-insensitively at query time.
func (g *Graph) AddEventSubscriber(rec SubscriberRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := subscriberKey(rec.TargetObject, rec.TargetEvent)
	g.subscribers[key] = append(g.subscribers[key], rec.QName)
}

func subscriberKey(object, event string) string {
	return strings.ToLower(object) + "\x00" + strings.ToLower(event)
}

// resolveCallee implements the four-step call-resolution priority, run
// while the writer lock is held by AddCallSite. Must be called with g.mu
// already locked for writing.
func (g *Graph) resolveCallee(caller QName, calleeObject *symtab.Sym, calleeMethod symtab.Sym) QName {
	if calleeObject == nil {
		// 1. Unqualified call resolves to the containing object.
		return QName{Object: caller.Object, Procedure: calleeMethod}
	}
	r := *calleeObject
	if _, isLocal := g.objects[r]; isLocal {
		return QName{Object: r, Procedure: calleeMethod}
	}
	if _, isExternal := g.externalObjects[r]; isExternal {
		return QName{Object: r, Procedure: calleeMethod}
	}
	for _, b := range g.vars[caller] {
		if b.Var == r {
			return QName{Object: b.Type, Procedure: calleeMethod}
		}
	}
	// 4. Literal receiver, as-is.
	return QName{Object: r, Procedure: calleeMethod}
}

// AddCallSite appends site to the arena, records it in the caller's
// outgoing adjacency and the file-scoped index, resolves its target per
// the four-step priority, and records it in the target's incoming
// adjacency (even if no definition for the target exists yet).
func (g *Graph) AddCallSite(caller QName, site CallSite) CallIdx {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := CallIdx(len(g.sites))
	siteCopy := site
	g.sites = append(g.sites, &siteCopy)

	g.outgoing[caller] = append(g.outgoing[caller], idx)
	g.fileSites[site.File] = append(g.fileSites[site.File], idx)

	target := g.resolveCallee(caller, site.CalleeObject, site.CalleeMethod)
	g.incoming[target] = append(g.incoming[target], idx)

	return idx
}

// AddExternalDefinition records a procedure known only through a dependency
// package. Externals never shadow a local definition with the same QName.
func (g *Graph) AddExternalDefinition(d ExternalDefinition) {
	g.mu.Lock()
	defer g.mu.Unlock()
	q := QName{Object: d.Object, Procedure: d.Procedure}
	if _, hasLocal := g.defs[q]; hasLocal {
		return
	}
	g.externals[q] = d
}

// GetDefinition returns the local definition for q, if any.
func (g *Graph) GetDefinition(q QName) (Definition, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, ok := g.defs[q]
	return d, ok
}

// GetExternalDefinition returns the external definition for q, if any.
func (g *Graph) GetExternalDefinition(q QName) (ExternalDefinition, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, ok := g.externals[q]
	return d, ok
}

// FindDefinitionAt returns the definition in file whose range contains
// (line, character), if any.
func (g *Graph) FindDefinitionAt(file string, line, character uint32) (Definition, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ref, ok := g.paths.Peek(file)
	if !ok {
		return Definition{}, false
	}
	pos := Position{Line: line, Character: character}
	for _, q := range g.fileDefs[ref] {
		d, ok := g.defs[q]
		if !ok {
			continue
		}
		if d.Range.Contains(pos) {
			return d, true
		}
	}
	return Definition{}, false
}

// GetIncomingCalls returns the live (non-tombstoned) call sites targeting q.
func (g *Graph) GetIncomingCalls(q QName) []CallSite {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.liveSites(g.incoming[q])
}

// GetOutgoingCalls returns the live call sites made from within q.
func (g *Graph) GetOutgoingCalls(q QName) []CallSite {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.liveSites(g.outgoing[q])
}

// GetIncomingCallCount is an O(1) fan-in count (the adjacency list is kept
// compacted by RemoveFile, so no live filtering is required beyond a length
// read under the lock).
func (g *Graph) GetIncomingCallCount(q QName) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.incoming[q])
}

func (g *Graph) liveSites(idxs []CallIdx) []CallSite {
	out := make([]CallSite, 0, len(idxs))
	for _, idx := range idxs {
		if int(idx) < len(g.sites) && g.sites[idx] != nil {
			out = append(out, *g.sites[idx])
		}
	}
	return out
}

// GetEventSubscribers returns the subscriber records whose declared target
// matches triggerQName's object/procedure, case-insensitively.
func (g *Graph) GetEventSubscribers(triggerQName QName) []SubscriberRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	objStr, ok1 := g.pool.Resolve(triggerQName.Object)
	procStr, ok2 := g.pool.Resolve(triggerQName.Procedure)
	if !ok1 || !ok2 {
		return nil
	}
	key := subscriberKey(objStr, procStr)
	qs := g.subscribers[key]
	out := make([]SubscriberRecord, 0, len(qs))
	for _, q := range qs {
		out = append(out, SubscriberRecord{QName: q, TargetObject: objStr, TargetEvent: procStr})
	}
	return out
}

// GetDefinitionsInFile returns every local definition whose file equals
// path.
func (g *Graph) GetDefinitionsInFile(path string) []Definition {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ref, ok := g.paths.Peek(path)
	if !ok {
		return nil
	}
	qs := g.fileDefs[ref]
	out := make([]Definition, 0, len(qs))
	for _, q := range qs {
		if d, ok := g.defs[q]; ok {
			out = append(out, d)
		}
	}
	return out
}

// GetUnusedProcedures returns every local Procedure-kind definition with
// zero live incoming call sites. Triggers and event subscribers are
// excluded: they are invoked by the platform, not by explicit calls, so a
// zero fan-in count there is expected, not a finding.
func (g *Graph) GetUnusedProcedures() []Definition {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Definition
	for q, d := range g.defs {
		if d.Kind != KindProcedure {
			continue
		}
		if len(g.liveSitesLocked(g.incoming[q])) == 0 {
			out = append(out, d)
		}
	}
	return out
}

func (g *Graph) liveSitesLocked(idxs []CallIdx) []CallIdx {
	live := make([]CallIdx, 0, len(idxs))
	for _, idx := range idxs {
		if int(idx) < len(g.sites) && g.sites[idx] != nil {
			live = append(live, idx)
		}
	}
	return live
}

// IterDefinitions calls fn for every local definition. Iteration order is
// unspecified.
func (g *Graph) IterDefinitions(fn func(QName, Definition)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for q, d := range g.defs {
		fn(q, d)
	}
}

// DefinitionCount returns the number of local definitions.
func (g *Graph) DefinitionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.defs)
}

// ExternalDefinitionCount returns the number of external definitions.
func (g *Graph) ExternalDefinitionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.externals)
}

// CallSiteCount returns the number of live (non-tombstoned) call sites.
func (g *Graph) CallSiteCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	count := 0
	for _, s := range g.sites {
		if s != nil {
			count++
		}
	}
	return count
}
