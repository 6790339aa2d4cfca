package placeholders

import (
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "no placeholders",
			input:    "https://example.com/static.zip",
			expected: []string{},
		},
		{
			name:     "single placeholder",
			input:    "{name}-main",
			expected: []string{"name"},
		},
		{
			name:     "multiple placeholders",
			input:    "https://github.com/Byteram/{name}/archive/refs/heads/{branch}.{format}",
			expected: []string{"name", "branch", "format"},
		},
		{
			name:     "duplicate placeholders",
			input:    "{name}/{name}.tar.gz",
			expected: []string{"name"},
		},
		{
			name:     "placeholder with underscore",
			input:    "{app_dir}/main.py",
			expected: []string{"app_dir"},
		},
		{
			name:     "placeholder with dash",
			input:    "{top-dir}",
			expected: []string{"top-dir"},
		},
		{
			name:     "unclosed brace is not a placeholder",
			input:    "{name-main",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Extract(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("Extract() returned %d items, expected %d", len(result), len(tt.expected))
			}
			for i, exp := range tt.expected {
				if i >= len(result) || result[i] != exp {
					t.Errorf("Extract()[%d] = %q, want %q", i, result[i], exp)
				}
			}
		})
	}
}

func TestHas(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		token    string
		expected bool
	}{
		{"present", "{name}-{branch}", "name", true},
		{"absent", "{name}-{branch}", "format", false},
		{"empty template", "", "name", false},
		{"literal text only", "name", "name", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Has(tt.input, tt.token); got != tt.expected {
				t.Errorf("Has(%q, %q) = %v, want %v", tt.input, tt.token, got, tt.expected)
			}
		})
	}
}

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		values   map[string]string
		expected string
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "no placeholders",
			input:    "plain",
			values:   map[string]string{},
			expected: "plain",
			wantErr:  false,
		},
		{
			name:     "single substitution",
			input:    "{name}-main",
			values:   map[string]string{"name": "yday"},
			expected: "yday-main",
			wantErr:  false,
		},
		{
			name:     "url template",
			input:    "https://github.com/Byteram/{name}/archive/refs/heads/{branch}.{format}",
			values:   map[string]string{"name": "timer", "branch": "main", "format": "zip"},
			expected: "https://github.com/Byteram/timer/archive/refs/heads/main.zip",
			wantErr:  false,
		},
		{
			name:    "missing placeholder",
			input:   "{name}-{branch}",
			values:  map[string]string{"name": "timer"},
			wantErr: true,
			errMsg:  "missing placeholders: branch",
		},
		{
			name:    "all missing",
			input:   "{name}",
			values:  map[string]string{},
			wantErr: true,
			errMsg:  "missing placeholders: name",
		},
		{
			name:     "duplicate placeholders",
			input:    "{name} and {name}",
			values:   map[string]string{"name": "timer"},
			expected: "timer and timer",
			wantErr:  false,
		},
		{
			name:     "extra values ignored",
			input:    "{name}",
			values:   map[string]string{"name": "timer", "branch": "main"},
			expected: "timer",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Substitute(tt.input, tt.values)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Substitute() expected error, got nil")
					return
				}
				if tt.errMsg != "" && err.Error() != tt.errMsg {
					t.Errorf("Substitute() error = %q, want %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("Substitute() unexpected error: %v", err)
				return
			}
			if result != tt.expected {
				t.Errorf("Substitute() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestMissingError(t *testing.T) {
	_, err := Substitute("{a} {b}", nil)
	if err == nil {
		t.Fatal("Substitute() expected error, got nil")
	}

	me, ok := err.(*MissingError)
	if !ok {
		t.Fatalf("Substitute() error type = %T, want *MissingError", err)
	}
	if got := me.Missing(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Missing() = %v, want [a b]", got)
	}
}
