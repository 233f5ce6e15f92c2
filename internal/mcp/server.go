// Package mcp exposes the call-hierarchy query layer as an MCP tool
// surface: al_prepare_call_hierarchy, al_incoming_calls, al_outgoing_calls.
// Trimmed from the teacher's general-purpose code-search MCP server down to
// the three tools the AL call-hierarchy domain needs, grounded on its
// server.go/response.go wiring idiom (mcp.NewServer + mcp.Tool +
// jsonschema.Schema + mcp.CallToolResult).
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	gosdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/SShadowS/al-call-hierarchy/internal/analysis"
	"github.com/SShadowS/al-call-hierarchy/internal/callgraph"
	"github.com/SShadowS/al-call-hierarchy/internal/debug"
	"github.com/SShadowS/al-call-hierarchy/internal/idcodec"
	"github.com/SShadowS/al-call-hierarchy/internal/symtab"
)

// Server is the MCP server exposing call-hierarchy queries over a single
// indexed Graph.
type Server struct {
	graph  *callgraph.Graph
	server *gosdk.Server
}

// NewServer creates an MCP server backed by graph. The graph is expected to
// already be indexed (see internal/indexer); the server only reads it.
func NewServer(graph *callgraph.Graph) *Server {
	s := &Server{graph: graph}

	s.server = gosdk.NewServer(&gosdk.Implementation{
		Name:    "al-call-hierarchy-mcp",
		Version: "0.1.0",
	}, nil)

	s.registerTools()
	return s
}

// Start runs the server over stdio until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	debug.LogMCP("starting MCP server with stdio transport\n")
	return s.server.Run(ctx, &gosdk.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&gosdk.Tool{
		Name:        "al_prepare_call_hierarchy",
		Description: "Resolve the procedure at a file position into a call-hierarchy root item, returning an opaque id to pass to al_incoming_calls/al_outgoing_calls.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file":      {Type: "string", Description: "Absolute path to the .al file"},
				"line":      {Type: "integer", Description: "Zero-based line number"},
				"character": {Type: "integer", Description: "Zero-based character offset"},
			},
			Required: []string{"file", "line", "character"},
		},
	}, s.handlePrepareCallHierarchy)

	s.server.AddTool(&gosdk.Tool{
		Name:        "al_incoming_calls",
		Description: "List every call site that targets the item id returned by al_prepare_call_hierarchy.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"id": {Type: "string", Description: "Item id from al_prepare_call_hierarchy"},
			},
			Required: []string{"id"},
		},
	}, s.handleIncomingCalls)

	s.server.AddTool(&gosdk.Tool{
		Name:        "al_outgoing_calls",
		Description: "List every call made from within the item id returned by al_prepare_call_hierarchy.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"id": {Type: "string", Description: "Item id from al_prepare_call_hierarchy"},
			},
			Required: []string{"id"},
		},
	}, s.handleOutgoingCalls)
}

func createJSONResponse(data any) (*gosdk.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return &gosdk.CallToolResult{
		Content: []gosdk.Content{&gosdk.TextContent{Text: string(content)}},
	}, nil
}

// createErrorResult reports a tool-level failure inside the result object
// with IsError set, per the MCP spec: protocol-level errors hide the
// failure from the model, so tool errors must round-trip as content
// instead.
func createErrorResult(operation string, err error) (*gosdk.CallToolResult, error) {
	result, marshalErr := createJSONResponse(map[string]any{
		"success":   false,
		"operation": operation,
		"error":     err.Error(),
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	result.IsError = true
	return result, nil
}

// encodeItemID builds the opaque round-trip id for a call-hierarchy item,
// grounded on the original analyzer's data:{"object","procedure"} shape
// (original_source/src/handlers.rs) but packed through idcodec for a
// shorter opaque id rather than shipped as a raw JSON blob.
func encodeItemID(graph *callgraph.Graph, object, procedure string) string {
	objSym, _ := graph.GetSymbol(object)
	procSym, _ := graph.GetSymbol(procedure)
	return idcodec.EncodeQName(uint32(objSym), uint32(procSym))
}

func decodeItemID(graph *callgraph.Graph, id string) (object, procedure string, err error) {
	objSym, procSym, err := idcodec.DecodeQName(id)
	if err != nil {
		return "", "", fmt.Errorf("invalid id %q: %w", id, err)
	}
	objName, ok1 := graph.Resolve(symtab.Sym(objSym))
	procName, ok2 := graph.Resolve(symtab.Sym(procSym))
	if !ok1 || !ok2 {
		return "", "", fmt.Errorf("id %q does not resolve to a known symbol", id)
	}
	return objName, procName, nil
}

func itemToJSON(graph *callgraph.Graph, item analysis.Item) map[string]any {
	return map[string]any{
		"name":   item.Name,
		"detail": item.Detail,
		"file":   item.File,
		"range": map[string]any{
			"start": map[string]any{"line": item.Range.Start.Line, "character": item.Range.Start.Character},
			"end":   map[string]any{"line": item.Range.End.Line, "character": item.Range.End.Character},
		},
		"id": encodeItemID(graph, item.Object, item.Procedure),
	}
}
