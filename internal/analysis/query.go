package analysis

import (
	"fmt"

	"github.com/SShadowS/al-call-hierarchy/internal/callgraph"
)

// SymbolKind mirrors the small subset of LSP's SymbolKind the call
// hierarchy surface needs; callers translate to protocol.SymbolKind.
type SymbolKind int

const (
	SymbolFunction SymbolKind = iota
	SymbolEvent
)

// Item is a call hierarchy node: a single procedure/trigger/subscriber,
// identified well enough for a client to round-trip it back into
// IncomingCalls/OutgoingCalls via Object/Procedure.
type Item struct {
	Name      string
	Detail    string
	Kind      SymbolKind
	File      string
	Range     callgraph.Range
	Object    string
	Procedure string
}

// IncomingCall pairs a caller Item with the ranges inside it where the call
// occurs.
type IncomingCall struct {
	From       Item
	FromRanges []callgraph.Range
}

// OutgoingCall pairs a callee Item with the ranges inside the caller where
// the call occurs.
type OutgoingCall struct {
	To         Item
	FromRanges []callgraph.Range
}

func definitionKindToSymbolKind(k callgraph.DefinitionKind) SymbolKind {
	switch k {
	case callgraph.KindProcedure:
		return SymbolFunction
	default:
		return SymbolEvent
	}
}

// PrepareCallHierarchy finds the definition containing (line, character) in
// file and returns it as a call hierarchy root item, grounded on
// handlers.rs's prepare_call_hierarchy.
func PrepareCallHierarchy(graph *callgraph.Graph, file string, line, character uint32) (Item, bool) {
	def, ok := graph.FindDefinitionAt(file, line, character)
	if !ok {
		return Item{}, false
	}
	objName, _ := graph.Resolve(def.Object)
	procName, _ := graph.Resolve(def.Procedure)

	return Item{
		Name:      procName,
		Detail:    fmt.Sprintf("%s.%s", objName, procName),
		Kind:      definitionKindToSymbolKind(def.Kind),
		File:      def.File.String(),
		Range:     def.Range,
		Object:    objName,
		Procedure: procName,
	}, true
}

// IncomingCalls returns every live call site that targets (object,
// procedure), grounded on handlers.rs's incoming_calls. The original
// caller QName's object is not recoverable from a bare CallSite, so each
// synthetic "from" item carries only the caller's procedure name, matching
// the original's own limitation.
func IncomingCalls(graph *callgraph.Graph, object, procedure string) ([]IncomingCall, bool) {
	objSym, ok1 := graph.GetSymbol(object)
	procSym, ok2 := graph.GetSymbol(procedure)
	if !ok1 || !ok2 {
		return nil, false
	}
	q := callgraph.QName{Object: objSym, Procedure: procSym}

	sites := graph.GetIncomingCalls(q)
	out := make([]IncomingCall, 0, len(sites))
	for _, site := range sites {
		callerName, _ := graph.Resolve(site.Caller)
		out = append(out, IncomingCall{
			From: Item{
				Name:  callerName,
				Kind:  SymbolFunction,
				File:  site.File.String(),
				Range: site.Range,
			},
			FromRanges: []callgraph.Range{site.Range},
		})
	}
	return out, true
}

// OutgoingCalls returns every call made from within (object, procedure),
// annotating each target as local, external (from a dependency package),
// or unresolved-external, grounded on handlers.rs's outgoing_calls.
func OutgoingCalls(graph *callgraph.Graph, object, procedure string) ([]OutgoingCall, bool) {
	objSym, ok1 := graph.GetSymbol(object)
	procSym, ok2 := graph.GetSymbol(procedure)
	if !ok1 || !ok2 {
		return nil, false
	}
	q := callgraph.QName{Object: objSym, Procedure: procSym}

	sites := graph.GetOutgoingCalls(q)
	out := make([]OutgoingCall, 0, len(sites))
	for _, site := range sites {
		calleeMethod, _ := graph.Resolve(site.CalleeMethod)

		if site.CalleeObject == nil {
			out = append(out, OutgoingCall{
				To: Item{
					Name:   calleeMethod,
					Kind:   SymbolFunction,
					Detail: "(local)",
					File:   site.File.String(),
					Range:  site.Range,
				},
				FromRanges: []callgraph.Range{site.Range},
			})
			continue
		}


		calleeObj, _ := graph.Resolve(*site.CalleeObject)
		targetQ := callgraph.QName{Object: *site.CalleeObject, Procedure: site.CalleeMethod}
		detail := fmt.Sprintf("%s.%s", calleeObj, calleeMethod)

		if def, ok := graph.GetDefinition(targetQ); ok {
			out = append(out, OutgoingCall{
				To: Item{
					Name: calleeMethod, Kind: SymbolFunction, Detail: detail,
					File: def.File.String(), Range: def.Range,
					Object: calleeObj, Procedure: calleeMethod,
				},
				FromRanges: []callgraph.Range{site.Range},
			})
			continue
		}

		if ext, ok := graph.GetExternalDefinition(targetQ); ok {
			appName, _ := graph.Resolve(ext.Source.AppName)
			out = append(out, OutgoingCall{
				To: Item{
					Name: calleeMethod, Kind: SymbolFunction,
					Detail: fmt.Sprintf("%s (from %s)", detail, appName),
					File:   site.File.String(), Range: site.Range,
				},
				FromRanges: []callgraph.Range{site.Range},
			})
			continue
		}

		unresolvedDetail := fmt.Sprintf("%s (external)", detail)
		if hint := didYouMeanHint(graph, calleeObj, calleeMethod); hint != "" {
			unresolvedDetail = fmt.Sprintf("%s, did you mean %s?", unresolvedDetail, hint)
		}
		out = append(out, OutgoingCall{
			To: Item{
				Name: calleeMethod, Kind: SymbolFunction,
				Detail: unresolvedDetail,
				File:   site.File.String(), Range: site.Range,
			},
			FromRanges: []callgraph.Range{site.Range},
		})
	}
	return out, true
}

// CodeLensEntry annotates a definition's declaration range with its fan-in
// count, for an editor's inline code lens.
type CodeLensEntry struct {
	Range     callgraph.Range
	Title     string
	Object    string
	Procedure string
}

// CodeLens returns one entry per local definition in file: a reference
// count ("N references") lens, matching VS Code's conventional
// "N references" call-hierarchy lens text.
func CodeLens(graph *callgraph.Graph, file string) []CodeLensEntry {
	defs := graph.GetDefinitionsInFile(file)
	out := make([]CodeLensEntry, 0, len(defs))
	for _, d := range defs {
		objName, _ := graph.Resolve(d.Object)
		procName, _ := graph.Resolve(d.Procedure)
		q := callgraph.QName{Object: d.Object, Procedure: d.Procedure}
		count := graph.GetIncomingCallCount(q)

		title := fmt.Sprintf("%d reference", count)
		if count != 1 {
			title += "s"
		}
		out = append(out, CodeLensEntry{
			Range:     d.Range,
			Title:     title,
			Object:    objName,
			Procedure: procName,
		})
	}
	return out
}

// didYouMeanHint returns the top SuggestProcedure candidate for (object,
// procedure) as "Object.Procedure", or "" if none clears the threshold.
func didYouMeanHint(graph *callgraph.Graph, object, procedure string) string {
	suggestions := SuggestProcedure(graph, object, procedure)
	if len(suggestions) == 0 {
		return ""
	}
	top := suggestions[0]
	return fmt.Sprintf("%s.%s", top.Object, top.Procedure)
}

// Diagnostic is a single non-error observation surfaced via
// textDocument/publishDiagnostics.
type Diagnostic struct {
	Range    callgraph.Range
	Severity string
	Message  string
}

// Diagnostics reports every local procedure in file with zero incoming
// calls, grounded on the original analyzer treating unused procedures as a
// quality signal distinct from the threshold-based Findings.
func Diagnostics(graph *callgraph.Graph, file string) []Diagnostic {
	unused := graph.GetUnusedProcedures()
	out := make([]Diagnostic, 0, len(unused))
	for _, d := range unused {
		if d.File.String() != file {
			continue
		}
		procName, _ := graph.Resolve(d.Procedure)
		out = append(out, Diagnostic{
			Range:    d.Range,
			Severity: "hint",
			Message:  fmt.Sprintf("%s has no callers found in the indexed workspace", procName),
		})
	}
	return out
}
