package indexer

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWatch_ReindexesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Caller.Codeunit.al", codeunitSource)

	cfg := testConfig(dir)
	cfg.Index.WatchDebounceMs = 20

	idx := New(cfg)
	if err := idx.IndexDirectory(context.Background(), dir); err != nil {
		t.Fatalf("IndexDirectory: %v", err)
	}

	stop, err := idx.Watch(context.Background(), dir)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

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

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if idx.Graph.DefinitionCount() >= 3 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if got := idx.Graph.DefinitionCount(); got < 3 {
		t.Fatalf("expected watcher to pick up new procedure, got %d definitions", got)
	}
}
