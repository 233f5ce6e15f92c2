package lspserver

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/SShadowS/al-call-hierarchy/internal/analysis"
	"github.com/SShadowS/al-call-hierarchy/internal/callgraph"
	"github.com/SShadowS/al-call-hierarchy/internal/debug"
)

func toRange(r callgraph.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   protocol.Position{Line: r.End.Line, Character: r.End.Character},
	}
}

func toSymbolKind(k analysis.SymbolKind) protocol.SymbolKind {
	if k == analysis.SymbolEvent {
		return protocol.SymbolKindEvent
	}
	return protocol.SymbolKindFunction
}

func toCallHierarchyItem(item analysis.Item) protocol.CallHierarchyItem {
	detail := item.Detail
	return protocol.CallHierarchyItem{
		Name:           item.Name,
		Kind:           toSymbolKind(item.Kind),
		Detail:         &detail,
		URI:            analysis.PathToURI(item.File),
		Range:          toRange(item.Range),
		SelectionRange: toRange(item.Range),
		Data: map[string]any{
			"object":    item.Object,
			"procedure": item.Procedure,
		},
	}
}

// itemFromData recovers the (object, procedure) pair a prepareCallHierarchy
// response round-trips through CallHierarchyItem.Data, since incoming/
// outgoingCalls only receive the item back, not the original query.
func itemFromData(item protocol.CallHierarchyItem) (object, procedure string, ok bool) {
	data, isMap := item.Data.(map[string]any)
	if !isMap {
		return "", "", false
	}
	object, ok1 := data["object"].(string)
	procedure, ok2 := data["procedure"].(string)
	return object, procedure, ok1 && ok2
}

func (s *Server) prepareCallHierarchy(ctx *glsp.Context, params *protocol.CallHierarchyPrepareParams) (any, error) {
	path, ok := analysis.URIToPath(params.TextDocument.URI)
	if !ok {
		return nil, fmt.Errorf("cannot convert document URI %q to a file path", params.TextDocument.URI)
	}

	item, found := analysis.PrepareCallHierarchy(s.idx.Graph, path,
		uint32(params.Position.Line), uint32(params.Position.Character))
	if !found {
		return nil, nil
	}

	return []protocol.CallHierarchyItem{toCallHierarchyItem(item)}, nil
}

func (s *Server) incomingCalls(ctx *glsp.Context, params *protocol.CallHierarchyIncomingCallsParams) ([]protocol.CallHierarchyIncomingCall, error) {
	object, procedure, ok := itemFromData(params.Item)
	if !ok {
		return nil, nil
	}

	calls, found := analysis.IncomingCalls(s.idx.Graph, object, procedure)
	if !found {
		return nil, nil
	}

	out := make([]protocol.CallHierarchyIncomingCall, 0, len(calls))
	for _, c := range calls {
		out = append(out, protocol.CallHierarchyIncomingCall{
			From:       toCallHierarchyItem(c.From),
			FromRanges: toRanges(c.FromRanges),
		})
	}
	return out, nil
}

func (s *Server) outgoingCalls(ctx *glsp.Context, params *protocol.CallHierarchyOutgoingCallsParams) ([]protocol.CallHierarchyOutgoingCall, error) {
	object, procedure, ok := itemFromData(params.Item)
	if !ok {
		return nil, nil
	}

	calls, found := analysis.OutgoingCalls(s.idx.Graph, object, procedure)
	if !found {
		return nil, nil
	}

	out := make([]protocol.CallHierarchyOutgoingCall, 0, len(calls))
	for _, c := range calls {
		out = append(out, protocol.CallHierarchyOutgoingCall{
			To:         toCallHierarchyItem(c.To),
			FromRanges: toRanges(c.FromRanges),
		})
	}
	return out, nil
}

func toRanges(ranges []callgraph.Range) []protocol.Range {
	out := make([]protocol.Range, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, toRange(r))
	}
	return out
}

func (s *Server) codeLens(ctx *glsp.Context, params *protocol.CodeLensParams) ([]protocol.CodeLens, error) {
	path, ok := analysis.URIToPath(params.TextDocument.URI)
	if !ok {
		return nil, fmt.Errorf("cannot convert document URI %q to a file path", params.TextDocument.URI)
	}

	entries := analysis.CodeLens(s.idx.Graph, path)
	out := make([]protocol.CodeLens, 0, len(entries))
	for _, e := range entries {
		out = append(out, protocol.CodeLens{
			Range: toRange(e.Range),
			Command: &protocol.Command{
				Title: e.Title,
			},
		})
	}
	return out, nil
}

// publishDiagnostics sends every Diagnostics finding for path to the
// client, replacing whatever set it previously published for that file.
func (s *Server) publishDiagnostics(ctx *glsp.Context, path string) {
	diags := analysis.Diagnostics(s.idx.Graph, path)
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		severity := toSeverity(d.Severity)
		message := d.Message
		out = append(out, protocol.Diagnostic{
			Range:    toRange(d.Range),
			Severity: &severity,
			Message:  message,
		})
	}

	if ctx == nil {
		debug.LogLSP("no notifier available, dropping diagnostics for %s\n", path)
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         analysis.PathToURI(path),
		Diagnostics: out,
	})
}

func toSeverity(severity string) protocol.DiagnosticSeverity {
	switch severity {
	case "error":
		return protocol.DiagnosticSeverityError
	case "warning":
		return protocol.DiagnosticSeverityWarning
	case "hint":
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityInformation
	}
}
