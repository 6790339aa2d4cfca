package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Byteram/pget/internal/archive"
	"github.com/Byteram/pget/internal/engine"
)

// stubFetcher satisfies engine.Fetcher for tests that never fetch.
type stubFetcher struct{}

func (stubFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	return nil, fmt.Errorf("unexpected fetch of %q", name)
}

func testEngine(t *testing.T, root string) *engine.Engine {
	t.Helper()

	e, err := engine.New(engine.Options{
		Root:    root,
		Fetcher: stubFetcher{},
		Conventions: archive.Conventions{
			RootDir:    "{name}-{branch}",
			AppDir:     "app",
			Entrypoint: "main.py",
		},
		Branch:      "main",
		Interpreter: "python3",
	})
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	return e
}

func TestDoctorHealthy(t *testing.T) {
	root := t.TempDir()
	fakeInstall(t, root, "timer", false)

	out, err := Doctor(testEngine(t, root))
	if err != nil {
		t.Fatalf("Doctor failed: %v", err)
	}

	if !out.Healthy {
		t.Error("Healthy = false for a clean root")
	}
	if out.Root != root {
		t.Errorf("Root = %q, want %q", out.Root, root)
	}
	if len(out.Findings) != 1 || !out.Findings[0].Healthy {
		t.Errorf("findings = %+v", out.Findings)
	}
}

func TestDoctorCorruption(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix permission bits")
	}

	root := t.TempDir()
	fakeInstall(t, root, "timer", false)
	if err := os.Chmod(filepath.Join(root, "bin", "timer"), 0644); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "share", "orphan"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	out, err := Doctor(testEngine(t, root))
	if err != nil {
		t.Fatalf("Doctor failed: %v", err)
	}

	if out.Healthy {
		t.Error("Healthy = true for a corrupt root")
	}
	if len(out.Findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(out.Findings))
	}
	if out.Findings[0].Name != "orphan" || out.Findings[0].Healthy {
		t.Errorf("finding[0] = %+v", out.Findings[0])
	}
	if out.Findings[1].Name != "timer" || out.Findings[1].Detail != "command is not executable" {
		t.Errorf("finding[1] = %+v", out.Findings[1])
	}
}

func TestPrintDoctor(t *testing.T) {
	out := &DoctorOutput{
		Findings: []DoctorEntry{
			{Name: "timer", Kind: "single-file", Healthy: true},
			{Name: "yday", Kind: "multi-file", Detail: "launcher's support directory is missing"},
		},
	}

	var buf bytes.Buffer
	PrintDoctor(&buf, out)

	got := buf.String()
	for _, want := range []string{"STATUS", "timer", "ok", "yday", "support directory is missing"} {
		if !strings.Contains(got, want) {
			t.Errorf("table output missing %q:\n%s", want, got)
		}
	}
}

func TestPrintDoctorEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintDoctor(&buf, &DoctorOutput{Healthy: true})

	if got := buf.String(); got != "Nothing installed; nothing to check.\n" {
		t.Errorf("empty output = %q", got)
	}
}

func TestPrintDoctorPlain(t *testing.T) {
	out := &DoctorOutput{
		Findings: []DoctorEntry{
			{Name: "timer", Healthy: true},
			{Name: "yday", Detail: "command cannot be read"},
		},
	}

	var buf bytes.Buffer
	PrintDoctorPlain(&buf, out)

	if got := buf.String(); got != "timer: ok\nyday: command cannot be read\n" {
		t.Errorf("plain output = %q", got)
	}
}
