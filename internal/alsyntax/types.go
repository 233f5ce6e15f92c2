package alsyntax

import "github.com/SShadowS/al-call-hierarchy/internal/callgraph"

// ParsedFile is everything extracted from a single AL source file.
type ParsedFile struct {
	ObjectKind callgraph.ObjectKind
	ObjectName string

	Definitions []ParsedDefinition
	Calls       []ParsedCall
	Variables   []ParsedVariable
	Subscribers []ParsedSubscriber
}

// ParsedDefinition is a single procedure/trigger/event-subscriber body.
type ParsedDefinition struct {
	Name           string
	Range          callgraph.Range
	Kind           callgraph.DefinitionKind
	Complexity     uint32
	LineCount      uint32
	ParameterCount uint32
}

// ParsedCall is a single textual invocation.
type ParsedCall struct {
	Object              string // empty for an unqualified call
	HasObject           bool
	Method              string
	Range               callgraph.Range
	ContainingProcedure string
}

// ParsedVariable is a single local or global variable declaration.
type ParsedVariable struct {
	Name                string
	TypeName            string
	TypeKind            string // "Record", "Codeunit", ... or "" when not a complex type
	ContainingProcedure string // "" for a global variable
}

// ParsedSubscriber pairs an EventSubscriber procedure name with the
// (object, event) pair parsed out of its attribute arguments.
type ParsedSubscriber struct {
	ProcedureName string
	TargetObject  string
	TargetEvent   string
}
