package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	gosdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/SShadowS/al-call-hierarchy/internal/analysis"
	"github.com/SShadowS/al-call-hierarchy/internal/callgraph"
)

type prepareParams struct {
	File      string `json:"file"`
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

func (s *Server) handlePrepareCallHierarchy(ctx context.Context, req *gosdk.CallToolRequest) (*gosdk.CallToolResult, error) {
	var p prepareParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return createErrorResult("al_prepare_call_hierarchy", fmt.Errorf("invalid parameters: %w", err))
	}

	item, ok := analysis.PrepareCallHierarchy(s.graph, p.File, p.Line, p.Character)
	if !ok {
		return createErrorResult("al_prepare_call_hierarchy",
			fmt.Errorf("no procedure found at %s:%d:%d", p.File, p.Line, p.Character))
	}

	return createJSONResponse(itemToJSON(s.graph, item))
}

type itemIDParams struct {
	ID string `json:"id"`
}

func (s *Server) handleIncomingCalls(ctx context.Context, req *gosdk.CallToolRequest) (*gosdk.CallToolResult, error) {
	var p itemIDParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return createErrorResult("al_incoming_calls", fmt.Errorf("invalid parameters: %w", err))
	}

	object, procedure, err := decodeItemID(s.graph, p.ID)
	if err != nil {
		return createErrorResult("al_incoming_calls", err)
	}

	calls, ok := analysis.IncomingCalls(s.graph, object, procedure)
	if !ok {
		return createErrorResult("al_incoming_calls", fmt.Errorf("unknown symbol %s.%s", object, procedure))
	}

	out := make([]map[string]any, 0, len(calls))
	for _, c := range calls {
		out = append(out, map[string]any{
			"from":       itemToJSON(s.graph, c.From),
			"fromRanges": rangesToJSON(c.FromRanges),
		})
	}
	return createJSONResponse(map[string]any{"calls": out})
}

func (s *Server) handleOutgoingCalls(ctx context.Context, req *gosdk.CallToolRequest) (*gosdk.CallToolResult, error) {
	var p itemIDParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return createErrorResult("al_outgoing_calls", fmt.Errorf("invalid parameters: %w", err))
	}

	object, procedure, err := decodeItemID(s.graph, p.ID)
	if err != nil {
		return createErrorResult("al_outgoing_calls", err)
	}

	calls, ok := analysis.OutgoingCalls(s.graph, object, procedure)
	if !ok {
		return createErrorResult("al_outgoing_calls", fmt.Errorf("unknown symbol %s.%s", object, procedure))
	}

	out := make([]map[string]any, 0, len(calls))
	for _, c := range calls {
		out = append(out, map[string]any{
			"to":         itemToJSON(s.graph, c.To),
			"fromRanges": rangesToJSON(c.FromRanges),
		})
	}
	return createJSONResponse(map[string]any{"calls": out})
}

func rangesToJSON(ranges []callgraph.Range) []map[string]any {
	out := make([]map[string]any, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, map[string]any{
			"start": map[string]any{"line": r.Start.Line, "character": r.Start.Character},
			"end":   map[string]any{"line": r.End.Line, "character": r.End.Character},
		})
	}
	return out
}
