package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunProgressAgainstDemoStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  mode: prod\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	if err := runProgress(context.Background(), &out, path, "demo-roadmap"); err != nil {
		t.Fatalf("progress: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "Learn Go: 0/4 topics (0%)") {
		t.Fatalf("unexpected summary line: %q", got)
	}
	if !strings.Contains(got, "week 2 Concurrency: 0/2 (0%)") {
		t.Fatalf("missing week line: %q", got)
	}
}

func TestRunProgressUnknownRoadmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := runProgress(context.Background(), &bytes.Buffer{}, path, "missing"); err == nil {
		t.Fatalf("expected error for unknown roadmap")
	}
}

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"start", "migrate", "progress"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Fatalf("command %s not registered", name)
		}
	}
}
