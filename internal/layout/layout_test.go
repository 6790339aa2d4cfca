package layout

import (
	"path/filepath"
	"strings"
	"testing"

	pgeterrors "github.com/Byteram/pget/internal/errors"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name        string
		root        string
		app         string
		kind        Kind
		wantCommand string
		wantSupport string
	}{
		{
			name:        "single file",
			root:        "/home/u/.pget",
			app:         "timer",
			kind:        SingleFile,
			wantCommand: filepath.Join("/home/u/.pget", "bin", "timer"),
			wantSupport: "",
		},
		{
			name:        "multi file",
			root:        "/home/u/.pget",
			app:         "yday",
			kind:        MultiFile,
			wantCommand: filepath.Join("/home/u/.pget", "bin", "yday"),
			wantSupport: filepath.Join("/home/u/.pget", "share", "yday"),
		},
		{
			name:        "relative root",
			root:        "pgroot",
			app:         "x",
			kind:        MultiFile,
			wantCommand: filepath.Join("pgroot", "bin", "x"),
			wantSupport: filepath.Join("pgroot", "share", "x"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.root, tt.app, tt.kind)
			if got.Command != tt.wantCommand {
				t.Errorf("Plan() Command = %q, want %q", got.Command, tt.wantCommand)
			}
			if got.Support != tt.wantSupport {
				t.Errorf("Plan() Support = %q, want %q", got.Support, tt.wantSupport)
			}
		})
	}

	t.Run("deterministic", func(t *testing.T) {
		a := Plan("/r", "app", MultiFile)
		b := Plan("/r", "app", MultiFile)
		if a != b {
			t.Errorf("Plan() not deterministic: %v vs %v", a, b)
		}
	})
}

func TestKindString(t *testing.T) {
	if got := SingleFile.String(); got != "single-file" {
		t.Errorf("SingleFile.String() = %q, want 'single-file'", got)
	}
	if got := MultiFile.String(); got != "multi-file" {
		t.Errorf("MultiFile.String() = %q, want 'multi-file'", got)
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{
		"timer",
		"yday",
		"a",
		"my-tool",
		"my_tool",
		"tool2",
		"v2.1-beta",
		"X",
	}
	for _, name := range valid {
		t.Run("valid "+name, func(t *testing.T) {
			if err := ValidateName(name); err != nil {
				t.Errorf("ValidateName(%q) = %v, want nil", name, err)
			}
		})
	}

	invalid := []struct {
		label string
		name  string
	}{
		{"empty", ""},
		{"leading dot", ".hidden"},
		{"dot", "."},
		{"dotdot", ".."},
		{"slash", "a/b"},
		{"backslash", `a\b`},
		{"absolute", "/bin"},
		{"space", "two words"},
		{"colon", "a:b"},
		{"leading dash", "-flag"},
		{"overlong", strings.Repeat("a", 256)},
	}
	for _, tt := range invalid {
		t.Run("invalid "+tt.label, func(t *testing.T) {
			err := ValidateName(tt.name)
			if err == nil {
				t.Fatalf("ValidateName(%q) = nil, want error", tt.name)
			}
			if !pgeterrors.IsInvalidName(err) {
				t.Errorf("ValidateName(%q) error does not wrap ErrInvalidName: %v", tt.name, err)
			}
		})
	}
}
