package alsyntax

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/SShadowS/al-call-hierarchy/internal/callgraph"
)

// Extractor parses AL source into a ParsedFile. Not safe for concurrent use
// by multiple goroutines; the indexer keeps a pool of one per worker, the
// same way the teacher's TreeSitterParser keeps one tree_sitter.Parser per
// registered extension.
type Extractor struct {
	parser *tree_sitter.Parser

	definitionsQuery *tree_sitter.Query
	callsQuery       *tree_sitter.Query
	variablesQuery   *tree_sitter.Query
	subscribersQuery *tree_sitter.Query
}

// NewExtractor compiles the AL grammar and its four queries once.
func NewExtractor() (*Extractor, error) {
	lang := Language()

	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("alsyntax: set language: %w", err)
	}

	defs, qerr := tree_sitter.NewQuery(lang, DefinitionsQuery)
	if qerr != nil {
		return nil, fmt.Errorf("alsyntax: compile definitions query: %w", qerr)
	}
	calls, qerr := tree_sitter.NewQuery(lang, CallsQuery)
	if qerr != nil {
		return nil, fmt.Errorf("alsyntax: compile calls query: %w", qerr)
	}
	vars, qerr := tree_sitter.NewQuery(lang, VariablesQuery)
	if qerr != nil {
		return nil, fmt.Errorf("alsyntax: compile variables query: %w", qerr)
	}
	subs, qerr := tree_sitter.NewQuery(lang, EventSubscribersQuery)
	if qerr != nil {
		return nil, fmt.Errorf("alsyntax: compile event subscribers query: %w", qerr)
	}

	return &Extractor{
		parser:           parser,
		definitionsQuery: defs,
		callsQuery:       calls,
		variablesQuery:   vars,
		subscribersQuery: subs,
	}, nil
}

// Close releases the underlying tree-sitter parser and queries.
func (e *Extractor) Close() {
	e.parser.Close()
	e.definitionsQuery.Close()
	e.callsQuery.Close()
	e.variablesQuery.Close()
	e.subscribersQuery.Close()
}

// ParseFile parses source and extracts every construct the call graph
// needs: object header, definitions, calls, variables, and subscriber
// targets.
func (e *Extractor) ParseFile(source []byte) (ParsedFile, error) {
	tree := e.parser.Parse(source, nil)
	if tree == nil {
		return ParsedFile{}, fmt.Errorf("alsyntax: parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	var result ParsedFile

	e.extractDefinitions(root, source, &result)
	e.extractCalls(root, source, &result)
	e.extractVariables(root, source, &result)
	e.extractSubscribers(root, source, &result)

	return result, nil
}

var objectCaptureKinds = map[string]callgraph.ObjectKind{
	"codeunit.name":        callgraph.ObjectCodeunit,
	"table.name":            callgraph.ObjectTable,
	"page.name":             callgraph.ObjectPage,
	"report.name":           callgraph.ObjectReport,
	"query.name":            callgraph.ObjectQuery,
	"xmlport.name":          callgraph.ObjectXmlPort,
	"enum.name":             callgraph.ObjectEnum,
	"interface.name":        callgraph.ObjectInterface,
	"controladdin.name":     callgraph.ObjectControlAddIn,
	"pageext.name":          callgraph.ObjectPageExtension,
	"tableext.name":         callgraph.ObjectTableExtension,
	"enumext.name":          callgraph.ObjectEnumExtension,
	"permissionset.name":    callgraph.ObjectPermissionSet,
	"permissionsetext.name": callgraph.ObjectPermissionSetExtension,
}

func (e *Extractor) extractDefinitions(root *tree_sitter.Node, source []byte, result *ParsedFile) {
	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(e.definitionsQuery, root, source)
	names := e.definitionsQuery.CaptureNames()

	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, capture := range match.Captures {
			node := capture.Node
			name := names[capture.Index]
			text := nodeText(&node, source)

			if kind, ok := objectCaptureKinds[name]; ok {
				result.ObjectKind = kind
				result.ObjectName = cleanName(text)
				continue
			}

			switch name {
			case "proc.name":
				if parent := node.Parent(); parent != nil {
					result.Definitions = append(result.Definitions, ParsedDefinition{
						Name:           cleanName(text),
						Range:          nodeRange(parent),
						Kind:           callgraph.KindProcedure,
						Complexity:     calculateComplexity(parent),
						LineCount:      lineCount(parent),
						ParameterCount: countParameters(parent),
					})
				}
			case "trigger.name":
				if parent := node.Parent(); parent != nil {
					result.Definitions = append(result.Definitions, ParsedDefinition{
						Name:           cleanName(text),
						Range:          nodeRange(parent),
						Kind:           callgraph.KindTrigger,
						Complexity:     calculateComplexity(parent),
						LineCount:      lineCount(parent),
						ParameterCount: countParameters(parent),
					})
				}
			case "named_trigger.def", "onrun.def":
				result.Definitions = append(result.Definitions, ParsedDefinition{
					Name:       extractTriggerName(&node, source),
					Range:      nodeRange(&node),
					Kind:       callgraph.KindTrigger,
					Complexity: calculateComplexity(&node),
					LineCount:  lineCount(&node),
				})
			}
		}
	}
}

func (e *Extractor) extractCalls(root *tree_sitter.Node, source []byte, result *ParsedFile) {
	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(e.callsQuery, root, source)
	names := e.callsQuery.CaptureNames()

	for match := matches.Next(); match != nil; match = matches.Next() {
		var object, method string
		var hasObject bool
		var rng callgraph.Range
		var haveRange bool
		var callNode *tree_sitter.Node

		for _, capture := range match.Captures {
			node := capture.Node
			name := names[capture.Index]
			text := nodeText(&node, source)

			switch name {
			case "call.simple":
				method = cleanName(text)
			case "call.object", "call.record":
				object = cleanName(text)
				hasObject = true
			case "call.method", "call.field":
				method = cleanName(text)
			case "call", "call.member", "call.field_access":
				rng = nodeRange(&node)
				haveRange = true
				n := node
				callNode = &n
			}
		}

		if method == "" || !haveRange {
			continue
		}

		var containing string
		if callNode != nil {
			containing = findContainingProcedure(callNode, source)
		}

		result.Calls = append(result.Calls, ParsedCall{
			Object:              object,
			HasObject:           hasObject,
			Method:              method,
			Range:               rng,
			ContainingProcedure: containing,
		})
	}
}

func (e *Extractor) extractVariables(root *tree_sitter.Node, source []byte, result *ParsedFile) {
	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(e.variablesQuery, root, source)
	names := e.variablesQuery.CaptureNames()

	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, capture := range match.Captures {
			node := capture.Node
			if names[capture.Index] != "var.decl" {
				continue
			}

			name, nameOK := extractVarName(&node, source)
			typeText, typeOK := extractVarType(&node, source)
			if !nameOK || !typeOK {
				continue
			}

			typeKind, typeName := parseTypeSpecification(typeText)
			result.Variables = append(result.Variables, ParsedVariable{
				Name:                name,
				TypeName:            typeName,
				TypeKind:            typeKind,
				ContainingProcedure: findContainingProcedure(&node, source),
			})
		}
	}
}

// extractSubscribers mines EventSubscriber attributes for their declared
// (object, event) target. This has no analog in the original indexer's
// call-graph construction — EventSubscriber linkage there is name-based at
// query time only — but the attribute arguments are mechanically available,
// so a subscriber's true event trigger can be resolved instead of guessed.
func (e *Extractor) extractSubscribers(root *tree_sitter.Node, source []byte, result *ParsedFile) {
	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(e.subscribersQuery, root, source)
	names := e.subscribersQuery.CaptureNames()

	for match := matches.Next(); match != nil; match = matches.Next() {
		var procName, argsText string

		for _, capture := range match.Captures {
			node := capture.Node
			switch names[capture.Index] {
			case "proc.name":
				procName = cleanName(nodeText(&node, source))
			case "attr.args":
				argsText = nodeText(&node, source)
			}
		}

		if procName == "" || argsText == "" {
			continue
		}
		obj, event, ok := parseSubscriberArgs(argsText)
		if !ok {
			continue
		}
		result.Subscribers = append(result.Subscribers, ParsedSubscriber{
			ProcedureName: procName,
			TargetObject:  obj,
			TargetEvent:   event,
		})
	}
}

// parseSubscriberArgs splits an EventSubscriber attribute's argument list
// (e.g. `(ObjectType::Table, Database::Customer, 'OnAfterValidateEvent',
// 'No', false, false)`) on top-level commas and returns the 2nd argument's
// bare object name and the 3rd argument's bare event name. Both arguments
// are cleaned of surrounding quotes and any "Type::" qualifier prefix.
func parseSubscriberArgs(argsText string) (object, event string, ok bool) {
	inner := strings.TrimSpace(argsText)
	inner = strings.TrimPrefix(inner, "(")
	inner = strings.TrimSuffix(inner, ")")

	parts := splitTopLevel(inner, ',')
	if len(parts) < 3 {
		return "", "", false
	}
	return subscriberArgName(parts[1]), subscriberArgName(parts[2]), true
}

func subscriberArgName(arg string) string {
	arg = strings.TrimSpace(arg)
	if idx := strings.LastIndex(arg, "::"); idx != -1 {
		arg = arg[idx+2:]
	}
	return cleanName(arg)
}

// splitTopLevel splits s on sep, ignoring occurrences of sep inside a
// single- or double-quoted span.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func extractVarName(node *tree_sitter.Node, source []byte) (string, bool) {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return cleanName(nodeText(nameNode, source)), true
	}
	if namesNode := node.ChildByFieldName("names"); namesNode != nil {
		for i := uint(0); i < namesNode.ChildCount(); i++ {
			child := namesNode.Child(i)
			if child == nil {
				continue
			}
			if child.Kind() == "identifier" || child.Kind() == "quoted_identifier" {
				return cleanName(nodeText(child, source)), true
			}
		}
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "identifier" || child.Kind() == "quoted_identifier" {
			return cleanName(nodeText(child, source)), true
		}
	}
	return "", false
}

func extractVarType(node *tree_sitter.Node, source []byte) (string, bool) {
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		return nodeText(typeNode, source), true
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "type_specification", "basic_type":
			return nodeText(child, source), true
		}
	}
	return "", false
}

var complexTypeKinds = []string{
	"Record", "Codeunit", "Page", "Report", "Query", "XmlPort", "Enum", "Interface",
}

// parseTypeSpecification parses a type specification like `Record
// "Customer"` into ("Record", "Customer"). A type with no recognized kind
// prefix is returned as ("", cleanName(text)).
func parseTypeSpecification(typeText string) (kind, name string) {
	trimmed := strings.TrimSpace(typeText)
	for _, k := range complexTypeKinds {
		if strings.HasPrefix(trimmed, k) {
			rest := strings.TrimSpace(trimmed[len(k):])
			if n, ok := extractQuotedName(rest); ok {
				return k, n
			}
		}
	}
	return "", cleanName(trimmed)
}

func extractQuotedName(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, `"`) {
		if end := strings.Index(trimmed[1:], `"`); end != -1 {
			return trimmed[1 : end+1], true
		}
	}
	if trimmed != "" {
		return cleanName(trimmed), true
	}
	return "", false
}

// findContainingProcedure walks up from node to find the name of the
// enclosing procedure or trigger.
func findContainingProcedure(node *tree_sitter.Node, source []byte) string {
	current := node.Parent()
	for current != nil {
		switch current.Kind() {
		case "procedure", "trigger_declaration":
			if nameNode := current.ChildByFieldName("name"); nameNode != nil {
				return cleanName(nodeText(nameNode, source))
			}
		case "named_trigger", "onrun_trigger":
			return extractTriggerName(current, source)
		}
		current = current.Parent()
	}
	return ""
}

func extractTriggerName(node *tree_sitter.Node, source []byte) string {
	if child := node.Child(0); child != nil {
		text := nodeText(child, source)
		lower := strings.ToLower(text)
		if strings.HasPrefix(lower, "trigger") {
			if nameChild := node.ChildByFieldName("name"); nameChild != nil {
				return cleanName(nodeText(nameChild, source))
			}
		}
		return cleanName(text)
	}
	return node.Kind()
}

func nodeRange(node *tree_sitter.Node) callgraph.Range {
	start := node.StartPosition()
	end := node.EndPosition()
	return callgraph.Range{
		Start: callgraph.Position{Line: uint32(start.Row), Character: uint32(start.Column)},
		End:   callgraph.Position{Line: uint32(end.Row), Character: uint32(end.Column)},
	}
}

// countParameters counts the parameter nodes under a procedure/trigger
// declaration's "parameters" field, if the grammar exposes one. Procedures
// with no such field (named triggers, OnRun) have zero parameters.
func countParameters(node *tree_sitter.Node) uint32 {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}
	var count uint32
	for i := uint(0); i < params.ChildCount(); i++ {
		child := params.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "parameter" {
			count++
		}
	}
	return count
}

func lineCount(node *tree_sitter.Node) uint32 {
	start := node.StartPosition()
	end := node.EndPosition()
	return uint32(end.Row-start.Row) + 1
}

func nodeText(node *tree_sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

func cleanName(name string) string {
	trimmed := strings.TrimSpace(name)
	trimmed = strings.Trim(trimmed, `"`)
	trimmed = strings.Trim(trimmed, `'`)
	return trimmed
}
