// Package alsyntax implements C2, the AL tree-sitter extractor: object and
// procedure/trigger definitions, call sites, variable bindings, and
// EventSubscriber targets, plus cyclomatic complexity over a procedure body.
//
// It follows the teacher's community-parser adapter pattern
// (internal/parser.CommunityParserAdapter): a pluggable *tree_sitter.Language
// getter plus a handful of declarative queries, rather than a hand-rolled
// recursive-descent walker.
package alsyntax

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_al "github.com/tree-sitter-grammars/tree-sitter-al/bindings/go"
)

// Language returns the AL tree-sitter grammar.
func Language() *tree_sitter.Language {
	return tree_sitter.NewLanguage(tree_sitter_al.Language())
}

// Queries holds the declarative tree-sitter query strings used to mine an AL
// syntax tree for the constructs the call graph cares about. Transcribed
// from the original indexer's query module; the object-header queries are
// matched 1:1 against callgraph.ObjectKindFromNodeKind.
const (
	DefinitionsQuery = `
; Procedure definitions
(procedure
  name: (name) @proc.name)

; Trigger definitions
(trigger_declaration
  name: (trigger_name) @trigger.name)

; Named triggers (OnInsert, OnModify, etc.)
(named_trigger) @named_trigger.def

; OnRun trigger
(onrun_trigger) @onrun.def

; Object declarations for context - use object_name field
(codeunit_declaration
  object_name: (_) @codeunit.name)

(preproc_split_codeunit_declaration
  object_name: (_) @codeunit.name)

(table_declaration
  object_name: (_) @table.name)

(page_declaration
  object_name: (_) @page.name)

(report_declaration
  object_name: (_) @report.name)

(query_declaration
  object_name: (_) @query.name)

(xmlport_declaration
  object_name: (_) @xmlport.name)

(enum_declaration
  object_name: (_) @enum.name)

(interface_declaration
  object_name: (_) @interface.name)

(controladdin_declaration
  object_name: (_) @controladdin.name)

(pageextension_declaration
  object_name: (_) @pageext.name)

(tableextension_declaration
  object_name: (_) @tableext.name)

(enumextension_declaration
  object_name: (_) @enumext.name)

(permissionset_declaration
  object_name: (_) @permissionset.name)

(permissionsetextension_declaration
  object_name: (_) @permissionsetext.name)
`

	CallsQuery = `
; Simple procedure calls: DoSomething()
(call_expression
  function: (identifier) @call.simple) @call

; Method calls: Object.Method()
(call_expression
  function: (member_expression
    object: (_) @call.object
    property: (_) @call.method)) @call.member

; Field access that might be triggers: Rec.Validate()
(call_expression
  function: (field_access
    record: (_) @call.record
    field: (_) @call.field)) @call.field_access
`

	EventSubscribersQuery = `
; EventSubscriber attribute on procedures
(procedure
  (attribute_item
    (attribute_content
      name: (identifier) @attr.name
      (#eq? @attr.name "EventSubscriber")
      arguments: (attribute_arguments) @attr.args))
  name: (name) @proc.name) @subscriber
`

	VariablesQuery = `
; Capture all variable declarations - we'll extract name and type manually
(variable_declaration) @var.decl
`
)
