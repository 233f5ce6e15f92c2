package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/SShadowS/al-call-hierarchy/internal/callgraph"
	"github.com/SShadowS/al-call-hierarchy/internal/config"
)

func testConfig(root string) *config.Config {
	return &config.Config{
		Project: config.Project{Root: root},
		Index: config.Index{
			MaxFileSize:  10 * 1024 * 1024,
			WatchDebounceMs: 50,
		},
		Performance: config.Performance{
			MaxGoroutines:       2,
			ParallelFileWorkers: 2,
		},
		Include: []string{"**/*.al"},
		Exclude: []string{"**/.git/**"},
	}
}

const codeunitSource = `
codeunit 50000 "Caller Codeunit"
{
    procedure DoWork()
    begin
        Helper();
    end;

    local procedure Helper()
    begin
    end;
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestIndexDirectory_FoldsCallsAndDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Caller.Codeunit.al", codeunitSource)

	idx := New(testConfig(dir))
	if err := idx.IndexDirectory(context.Background(), dir); err != nil {
		t.Fatalf("IndexDirectory: %v", err)
	}

	stats := idx.Stats()
	if stats.FilesIndexed != 1 {
		t.Fatalf("expected 1 file indexed, got %d", stats.FilesIndexed)
	}
	if stats.Definitions != 2 {
		t.Fatalf("expected 2 definitions, got %d", stats.Definitions)
	}

	objSym, ok := idx.Graph.GetSymbol("Caller Codeunit")
	if !ok {
		t.Fatalf("expected object symbol to be interned")
	}
	helperSym, ok := idx.Graph.GetSymbol("Helper")
	if !ok {
		t.Fatalf("expected Helper symbol to be interned")
	}
	helper := callgraph.QName{Object: objSym, Procedure: helperSym}

	incoming := idx.Graph.GetIncomingCalls(helper)
	if len(incoming) != 1 {
		t.Fatalf("expected 1 incoming call to Helper, got %d", len(incoming))
	}
}

func TestReindexFile_SkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Caller.Codeunit.al", codeunitSource)

	idx := New(testConfig(dir))
	if err := idx.IndexDirectory(context.Background(), dir); err != nil {
		t.Fatalf("IndexDirectory: %v", err)
	}
	before := idx.Stats()

	if err := idx.ReindexFile(path); err != nil {
		t.Fatalf("ReindexFile: %v", err)
	}
	after := idx.Stats()

	if before.Definitions != after.Definitions {
		t.Fatalf("reindexing unchanged content should not alter definitions: before=%d after=%d",
			before.Definitions, after.Definitions)
	}
}

func TestReindexFile_RemovesDeletedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Caller.Codeunit.al", codeunitSource)

	idx := New(testConfig(dir))
	if err := idx.IndexDirectory(context.Background(), dir); err != nil {
		t.Fatalf("IndexDirectory: %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := idx.ReindexFile(path); err != nil {
		t.Fatalf("ReindexFile: %v", err)
	}

	if got := idx.Graph.DefinitionCount(); got != 0 {
		t.Fatalf("expected 0 definitions after removal, got %d", got)
	}
}

func TestReindexFile_PicksUpContentChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Caller.Codeunit.al", codeunitSource)

	idx := New(testConfig(dir))
	if err := idx.IndexDirectory(context.Background(), dir); err != nil {
		t.Fatalf("IndexDirectory: %v", err)
	}

	updated := `
codeunit 50000 "Caller Codeunit"
{
    procedure DoWork()
    begin
        Helper();
    end;

    local procedure Helper()
    begin
    end;

    local procedure ExtraProc()
    begin
    end;
}
`
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := idx.ReindexFile(path); err != nil {
		t.Fatalf("ReindexFile: %v", err)
	}

	if got := idx.Graph.DefinitionCount(); got != 3 {
		t.Fatalf("expected 3 definitions after content change, got %d", got)
	}
}

func TestIndexDirectory_ExcludesMatchedGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Caller.Codeunit.al", codeunitSource)
	excludedDir := filepath.Join(dir, ".alpackages")
	if err := os.MkdirAll(excludedDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, excludedDir, "Vendor.Codeunit.al", codeunitSource)

	cfg := testConfig(dir)
	cfg.Exclude = append(cfg.Exclude, "**/.alpackages/**")

	idx := New(cfg)
	if err := idx.IndexDirectory(context.Background(), dir); err != nil {
		t.Fatalf("IndexDirectory: %v", err)
	}

	if got := idx.Stats().FilesIndexed; got != 1 {
		t.Fatalf("expected excluded directory to be skipped, got %d files indexed", got)
	}
}
