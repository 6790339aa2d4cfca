package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Byteram/pget/internal/config"
	pgeterrors "github.com/Byteram/pget/internal/errors"
	"github.com/Byteram/pget/internal/selfupdate"
	"github.com/Byteram/pget/internal/testutil"
)

// writeTestConfig writes a config file pointing at the given source URL and
// returns its path. The installation root lives under dir as well.
func writeTestConfig(t *testing.T, dir, sourceURL string) string {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Root = filepath.Join(dir, "root")
	cfg.Source.URL = sourceURL
	cfg.Source.Formats = []string{"zip"}

	path := filepath.Join(dir, "config.toml")
	if err := config.Write(path, cfg); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestInstallListRemoveRoundTrip(t *testing.T) {
	payload := testutil.ZipArchive(t, map[string]string{
		"timer-main/timer.py": "import time\nprint(time.time())\n",
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/archives/timer/main.zip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, srv.URL+"/archives/{name}/{branch}.{format}")
	ctx := context.Background()

	var out bytes.Buffer
	err := runInstall(ctx, &out, InstallOptions{ConfigPath: cfgPath}, "timer")
	if err != nil {
		t.Fatalf("runInstall: %v", err)
	}
	if !strings.Contains(out.String(), "installed timer") {
		t.Errorf("install output missing confirmation: %q", out.String())
	}
	if !strings.Contains(out.String(), "fetched ") {
		t.Errorf("install output missing fetch summary: %q", out.String())
	}

	command := filepath.Join(dir, "root", "bin", "timer")
	if _, err := os.Stat(command); err != nil {
		t.Fatalf("installed command missing: %v", err)
	}

	out.Reset()
	if err := runList(&out, ListOptions{ConfigPath: cfgPath, Format: "plain"}); err != nil {
		t.Fatalf("runList: %v", err)
	}
	if out.String() != "timer\n" {
		t.Errorf("list output = %q, want %q", out.String(), "timer\n")
	}

	out.Reset()
	err = runRemove(ctx, &out, RemoveOptions{ConfigPath: cfgPath, Yes: true}, "timer")
	if err != nil {
		t.Fatalf("runRemove: %v", err)
	}
	if !strings.Contains(out.String(), "removed timer") {
		t.Errorf("remove output missing confirmation: %q", out.String())
	}
	if _, err := os.Stat(command); !os.IsNotExist(err) {
		t.Errorf("command still present after remove")
	}

	out.Reset()
	if err := runList(&out, ListOptions{ConfigPath: cfgPath, Format: "plain"}); err != nil {
		t.Fatalf("runList after remove: %v", err)
	}
	if out.String() != "" {
		t.Errorf("list after remove = %q, want empty", out.String())
	}
}

func TestRunInstallNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, srv.URL+"/archives/{name}/{branch}.{format}")

	var out bytes.Buffer
	err := runInstall(context.Background(), &out, InstallOptions{ConfigPath: cfgPath}, "ghost")
	if err == nil {
		t.Fatal("expected error for unknown application")
	}
	if !pgeterrors.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestRunListFormats(t *testing.T) {
	payload := testutil.ZipArchive(t, map[string]string{
		"timer-main/timer.py": "import time\n",
	})
	mux := http.NewServeMux()
	mux.HandleFunc("/archives/timer/main.zip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, srv.URL+"/archives/{name}/{branch}.{format}")

	var out bytes.Buffer
	if err := runInstall(context.Background(), &out, InstallOptions{ConfigPath: cfgPath}, "timer"); err != nil {
		t.Fatalf("runInstall: %v", err)
	}

	out.Reset()
	if err := runList(&out, ListOptions{ConfigPath: cfgPath, Format: "table"}); err != nil {
		t.Fatalf("runList table: %v", err)
	}
	if !strings.Contains(out.String(), "NAME") || !strings.Contains(out.String(), "timer") {
		t.Errorf("table output unexpected: %q", out.String())
	}

	out.Reset()
	if err := runList(&out, ListOptions{ConfigPath: cfgPath, Format: "json"}); err != nil {
		t.Fatalf("runList json: %v", err)
	}
	var decoded struct {
		Apps []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"apps"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("json output does not parse: %v", err)
	}
	if len(decoded.Apps) != 1 || decoded.Apps[0].Name != "timer" {
		t.Errorf("json output = %+v", decoded)
	}

	out.Reset()
	err := runList(&out, ListOptions{ConfigPath: cfgPath, Format: "csv"})
	if err == nil {
		t.Fatal("expected error for invalid format")
	}
	if !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunDoctor(t *testing.T) {
	payload := testutil.ZipArchive(t, map[string]string{
		"timer-main/timer.py": "import time\n",
	})
	mux := http.NewServeMux()
	mux.HandleFunc("/archives/timer/main.zip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, srv.URL+"/archives/{name}/{branch}.{format}")

	var out bytes.Buffer
	if err := runInstall(context.Background(), &out, InstallOptions{ConfigPath: cfgPath}, "timer"); err != nil {
		t.Fatalf("runInstall: %v", err)
	}

	out.Reset()
	if err := runDoctor(&out, DoctorOptions{ConfigPath: cfgPath, Format: "plain"}); err != nil {
		t.Fatalf("runDoctor: %v", err)
	}
	if out.String() != "timer: ok\n" {
		t.Errorf("doctor output = %q, want %q", out.String(), "timer: ok\n")
	}
}

func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")

	var out bytes.Buffer
	opts := InitOptions{ConfigPath: cfgPath, Root: filepath.Join(dir, "root"), Yes: true}
	if err := runInit(&out, opts); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	if !strings.Contains(out.String(), "Configuration written to "+cfgPath) {
		t.Errorf("init output unexpected: %q", out.String())
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Root != filepath.Join(dir, "root") {
		t.Errorf("root = %q, want %q", cfg.Root, filepath.Join(dir, "root"))
	}

	// A second init must refuse to clobber the file.
	out.Reset()
	err = runInit(&out, opts)
	if err == nil {
		t.Fatal("expected error for existing config")
	}
	if !strings.Contains(err.Error(), "use --force") {
		t.Errorf("unexpected error: %v", err)
	}

	opts.Force = true
	if err := runInit(&out, opts); err != nil {
		t.Fatalf("runInit with force: %v", err)
	}
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	if err := runVersion(&out, VersionOptions{Short: true}); err != nil {
		t.Fatalf("runVersion short: %v", err)
	}
	if out.String() != Version+"\n" {
		t.Errorf("short output = %q", out.String())
	}

	out.Reset()
	if err := runVersion(&out, VersionOptions{Format: "text"}); err != nil {
		t.Fatalf("runVersion text: %v", err)
	}
	if !strings.Contains(out.String(), "pget version") {
		t.Errorf("text output = %q", out.String())
	}

	out.Reset()
	if err := runVersion(&out, VersionOptions{Format: "json"}); err != nil {
		t.Fatalf("runVersion json: %v", err)
	}
	var info VersionInfo
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		t.Fatalf("json output does not parse: %v", err)
	}
	if info.Version != Version {
		t.Errorf("version = %q, want %q", info.Version, Version)
	}

	out.Reset()
	if err := runVersion(&out, VersionOptions{Format: "xml"}); err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand("1.2.3", "abc123", "2026-01-01")

	if cmd.Use != "pget" {
		t.Errorf("use = %q", cmd.Use)
	}
	if Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", Version)
	}

	want := []string{"install", "upgrade", "remove", "list", "doctor", "init", "self-upgrade", "version"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestSelfUpgradeCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"tag_name": "v99.0.0"}]`)
	}))
	defer srv.Close()

	updater := selfupdate.New("v1.0.0", "Byteram", "pget")
	updater.SetBaseURL(srv.URL)

	var out bytes.Buffer
	err := selfUpgrade(context.Background(), &out, updater, SelfUpgradeOptions{Check: true})
	if err != nil {
		t.Fatalf("selfUpgrade --check: %v", err)
	}
	if !strings.Contains(out.String(), "v99.0.0 is available") {
		t.Errorf("check output = %q", out.String())
	}

	current := selfupdate.New("v99.0.0", "Byteram", "pget")
	current.SetBaseURL(srv.URL)
	out.Reset()
	if err := selfUpgrade(context.Background(), &out, current, SelfUpgradeOptions{}); err != nil {
		t.Fatalf("selfUpgrade up-to-date: %v", err)
	}
	if !strings.Contains(out.String(), "up to date") {
		t.Errorf("up-to-date output = %q", out.String())
	}
}

func TestUpgradeRoundTrip(t *testing.T) {
	version := "print('v1')\n"
	mux := http.NewServeMux()
	mux.HandleFunc("/archives/timer/main.zip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(testutil.ZipArchive(t, map[string]string{
			"timer-main/timer.py": version,
		}))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, srv.URL+"/archives/{name}/{branch}.{format}")
	ctx := context.Background()

	var out bytes.Buffer
	if err := runInstall(ctx, &out, InstallOptions{ConfigPath: cfgPath}, "timer"); err != nil {
		t.Fatalf("runInstall: %v", err)
	}

	version = "print('v2')\n"
	out.Reset()
	err := runUpgrade(ctx, &out, UpgradeOptions{ConfigPath: cfgPath, Yes: true}, "timer")
	if err != nil {
		t.Fatalf("runUpgrade: %v", err)
	}
	if !strings.Contains(out.String(), "upgraded timer") {
		t.Errorf("upgrade output missing confirmation: %q", out.String())
	}

	installed, err := os.ReadFile(filepath.Join(dir, "root", "bin", "timer"))
	if err != nil {
		t.Fatalf("reading upgraded command: %v", err)
	}
	if !strings.Contains(string(installed), "print('v2')") {
		t.Errorf("command not upgraded: %q", installed)
	}
}
