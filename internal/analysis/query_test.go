package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SShadowS/al-call-hierarchy/internal/callgraph"
)

func buildCallFixtureGraph() *callgraph.Graph {
	g := callgraph.New()
	file := g.SharedPath("/repo/Sales.Codeunit.al")
	obj := g.Intern("Sales Mgt.")
	g.RegisterObject(obj, callgraph.ObjectCodeunit)

	doWork := g.Intern("DoWork")
	g.AddDefinition(callgraph.Definition{
		File: file, Object: obj, Procedure: doWork,
		ObjectKind: callgraph.ObjectCodeunit, Kind: callgraph.KindProcedure,
		Range: callgraph.Range{Start: callgraph.Position{Line: 2}, End: callgraph.Position{Line: 6}},
	})

	helper := g.Intern("Helper")
	g.AddDefinition(callgraph.Definition{
		File: file, Object: obj, Procedure: helper,
		ObjectKind: callgraph.ObjectCodeunit, Kind: callgraph.KindProcedure,
		Range: callgraph.Range{Start: callgraph.Position{Line: 8}, End: callgraph.Position{Line: 10}},
	})

	g.AddCallSite(callgraph.QName{Object: obj, Procedure: doWork}, callgraph.CallSite{
		File: file, Caller: doWork, CalleeMethod: helper,
		Range: callgraph.Range{Start: callgraph.Position{Line: 4}, End: callgraph.Position{Line: 4, Character: 8}},
	})

	return g
}

func TestPrepareCallHierarchy_FindsContainingDefinition(t *testing.T) {
	g := buildCallFixtureGraph()
	item, ok := PrepareCallHierarchy(g, "/repo/Sales.Codeunit.al", 3, 0)

	require.True(t, ok)
	assert.Equal(t, "DoWork", item.Procedure)
	assert.Equal(t, "Sales Mgt.", item.Object)
}

func TestPrepareCallHierarchy_OutsideAnyDefinition(t *testing.T) {
	g := buildCallFixtureGraph()
	_, ok := PrepareCallHierarchy(g, "/repo/Sales.Codeunit.al", 50, 0)
	assert.False(t, ok)
}

func TestIncomingCalls_ReturnsCallerProcedureOnly(t *testing.T) {
	g := buildCallFixtureGraph()
	calls, ok := IncomingCalls(g, "Sales Mgt.", "Helper")

	require.True(t, ok)
	require.Len(t, calls, 1)
	assert.Equal(t, "DoWork", calls[0].From.Name)
}

func TestOutgoingCalls_UnqualifiedCallIsMarkedLocal(t *testing.T) {
	g := buildCallFixtureGraph()
	calls, ok := OutgoingCalls(g, "Sales Mgt.", "DoWork")

	require.True(t, ok)
	require.Len(t, calls, 1)
	assert.Equal(t, "Helper", calls[0].To.Name)
	assert.Equal(t, "(local)", calls[0].To.Detail)
}

func TestOutgoingCalls_ExternalDependencyUsesCallSiteRange(t *testing.T) {
	g := buildCallFixtureGraph()
	file := g.SharedPath("/repo/Sales.Codeunit.al")
	obj := g.Intern("Sales Mgt.")
	doWork, _ := g.GetSymbol("DoWork")

	extObj := g.Intern("Vendor Lib")
	g.RegisterExternalObject(extObj, callgraph.ObjectCodeunit)
	extMethod := g.Intern("VendorHelper")
	g.AddExternalDefinition(callgraph.ExternalDefinition{
		Source:     callgraph.ExternalSource{AppName: g.Intern("Vendor App"), AppVersion: "1.0.0.0"},
		ObjectKind: callgraph.ObjectCodeunit, Object: extObj, Procedure: extMethod,
		Kind: callgraph.KindProcedure,
	})

	g.AddCallSite(callgraph.QName{Object: obj, Procedure: doWork}, callgraph.CallSite{
		File: file, Caller: doWork, CalleeObject: &extObj, CalleeMethod: extMethod,
		Range: callgraph.Range{Start: callgraph.Position{Line: 5}, End: callgraph.Position{Line: 5, Character: 12}},
	})

	calls, ok := OutgoingCalls(g, "Sales Mgt.", "DoWork")
	require.True(t, ok)
	require.Len(t, calls, 2)

	var external OutgoingCall
	for _, c := range calls {
		if c.To.Name == "VendorHelper" {
			external = c
		}
	}
	assert.Contains(t, external.To.Detail, "from Vendor App")
	assert.Equal(t, uint32(5), external.To.Range.Start.Line)
}

func TestOutgoingCalls_UnresolvedTargetOffersDidYouMeanHint(t *testing.T) {
	g := buildCallFixtureGraph()
	file := g.SharedPath("/repo/Sales.Codeunit.al")
	obj := g.Intern("Sales Mgt.")
	doWork, _ := g.GetSymbol("DoWork")

	// "Sales Mgmt." / "DoWerk" are typos of "Sales Mgt." / "DoWork", with no
	// local or external definition registered for them.
	typoObj := g.Intern("Sales Mgmt.")
	typoMethod := g.Intern("DoWerk")
	g.AddCallSite(callgraph.QName{Object: obj, Procedure: doWork}, callgraph.CallSite{
		File: file, Caller: doWork, CalleeObject: &typoObj, CalleeMethod: typoMethod,
		Range: callgraph.Range{Start: callgraph.Position{Line: 5}, End: callgraph.Position{Line: 5, Character: 10}},
	})

	calls, ok := OutgoingCalls(g, "Sales Mgt.", "DoWork")
	require.True(t, ok)

	var unresolved OutgoingCall
	for _, c := range calls {
		if c.To.Name == "DoWerk" {
			unresolved = c
		}
	}
	assert.Contains(t, unresolved.To.Detail, "(external)")
	assert.Contains(t, unresolved.To.Detail, "did you mean Sales Mgt..DoWork?")
}

func TestCodeLens_CountsIncomingReferences(t *testing.T) {
	g := buildCallFixtureGraph()
	lenses := CodeLens(g, "/repo/Sales.Codeunit.al")

	require.Len(t, lenses, 2)
	for _, l := range lenses {
		if l.Procedure == "Helper" {
			assert.Equal(t, "1 reference", l.Title)
		}
		if l.Procedure == "DoWork" {
			assert.Equal(t, "0 references", l.Title)
		}
	}
}

func TestDiagnostics_FlagsUnusedProcedure(t *testing.T) {
	g := buildCallFixtureGraph()
	diags := Diagnostics(g, "/repo/Sales.Codeunit.al")

	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "DoWork")
}
