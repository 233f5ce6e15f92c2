// Package callgraph implements C3, the in-memory call graph index: interned
// definitions, a tombstone-capable call-site arena, forward/inverse
// adjacency, per-procedure variable scopes, and file-scoped removal.
//
// Storage shapes and the call-resolution priority are grounded directly on
// the original AL indexer's graph module: a single exclusive writer guarded
// by a reader-writer lock, append-only call sites referenced by stable
// 32-bit indices, and resolution performed at insertion time rather than at
// query time.
package callgraph

import "github.com/SShadowS/al-call-hierarchy/internal/symtab"

// ObjectKind is the closed set of AL top-level object kinds.
type ObjectKind int

const (
	ObjectUnknown ObjectKind = iota
	ObjectCodeunit
	ObjectTable
	ObjectPage
	ObjectReport
	ObjectQuery
	ObjectXmlPort
	ObjectEnum
	ObjectInterface
	ObjectControlAddIn
	ObjectPageExtension
	ObjectTableExtension
	ObjectEnumExtension
	ObjectPermissionSet
	ObjectPermissionSetExtension
)

var objectKindNames = map[ObjectKind]string{
	ObjectCodeunit:               "Codeunit",
	ObjectTable:                  "Table",
	ObjectPage:                   "Page",
	ObjectReport:                 "Report",
	ObjectQuery:                  "Query",
	ObjectXmlPort:                "XmlPort",
	ObjectEnum:                   "Enum",
	ObjectInterface:              "Interface",
	ObjectControlAddIn:           "ControlAddIn",
	ObjectPageExtension:          "PageExtension",
	ObjectTableExtension:         "TableExtension",
	ObjectEnumExtension:          "EnumExtension",
	ObjectPermissionSet:          "PermissionSet",
	ObjectPermissionSetExtension: "PermissionSetExtension",
}

var objectKindFromNodeKind = map[string]ObjectKind{
	"codeunit_declaration":                 ObjectCodeunit,
	"preproc_split_codeunit_declaration":   ObjectCodeunit,
	"table_declaration":                    ObjectTable,
	"page_declaration":                     ObjectPage,
	"report_declaration":                   ObjectReport,
	"query_declaration":                    ObjectQuery,
	"xmlport_declaration":                  ObjectXmlPort,
	"enum_declaration":                     ObjectEnum,
	"interface_declaration":                ObjectInterface,
	"controladdin_declaration":             ObjectControlAddIn,
	"pageextension_declaration":            ObjectPageExtension,
	"tableextension_declaration":           ObjectTableExtension,
	"enumextension_declaration":            ObjectEnumExtension,
	"permissionset_declaration":            ObjectPermissionSet,
	"permissionsetextension_declaration":   ObjectPermissionSetExtension,
}

// String returns the AL display name of the object kind.
func (k ObjectKind) String() string {
	if name, ok := objectKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ObjectKindFromNodeKind classifies a tree-sitter object-header node kind
// (including the preprocessor-split codeunit variant) into an ObjectKind.
func ObjectKindFromNodeKind(nodeKind string) (ObjectKind, bool) {
	k, ok := objectKindFromNodeKind[nodeKind]
	return k, ok
}

// DefinitionKind is the closed set of callable-body kinds.
type DefinitionKind int

const (
	KindProcedure DefinitionKind = iota
	KindTrigger
	KindEventSubscriber
)

func (k DefinitionKind) String() string {
	switch k {
	case KindProcedure:
		return "Procedure"
	case KindTrigger:
		return "Trigger"
	case KindEventSubscriber:
		return "EventSubscriber"
	default:
		return "Unknown"
	}
}

// Position is a zero-based line/character location, matching LSP's Position.
type Position struct {
	Line      uint32
	Character uint32
}

// Range is a boundary-inclusive text range used for
// "is this position inside this definition" containment checks.
type Range struct {
	Start Position
	End   Position
}

// Contains reports whether pos falls within r, inclusive of both boundaries.
func (r Range) Contains(pos Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

// QName is the primary key of a definition: an (object, procedure) symbol
// pair. At most one local Definition exists per QName in a graph generation.
type QName struct {
	Object    symtab.Sym
	Procedure symtab.Sym
}

// Definition is a single procedure/trigger/event-subscriber body.
type Definition struct {
	File           *symtab.PathRef
	Range          Range
	ObjectKind     ObjectKind
	Object         symtab.Sym
	Procedure      symtab.Sym
	Kind           DefinitionKind
	Complexity     uint32
	LineCount      uint32
	ParameterCount uint32
}

// CallIdx is a stable index into the call-site arena. Indices never shift;
// a removed slot is tombstoned (set to nil) rather than deleted.
type CallIdx uint32

// CallSite is a single textual invocation.
type CallSite struct {
	File         *symtab.PathRef
	Range        Range
	Caller       symtab.Sym
	CalleeObject *symtab.Sym // nil for an unqualified call
	CalleeMethod symtab.Sym
}

// VarBinding records that a local variable of record/codeunit kind is bound
// to a given type name within some procedure scope.
type VarBinding struct {
	Var  symtab.Sym
	Type symtab.Sym
}

// ExternalSource names the dependency package an ExternalDefinition came
// from.
type ExternalSource struct {
	AppName    symtab.Sym
	AppVersion string
}

// ExternalDefinition is a procedure known only through a dependency
// package; it has no source range.
type ExternalDefinition struct {
	Source     ExternalSource
	ObjectKind ObjectKind
	Object     symtab.Sym
	Procedure  symtab.Sym
	Kind       DefinitionKind
}

// SubscriberRecord pairs an EventSubscriber definition with its declared
// target (object, event) as parsed from the attribute's arguments.
type SubscriberRecord struct {
	QName        QName
	TargetObject string
	TargetEvent  string
}
