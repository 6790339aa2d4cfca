// Package app provides high-level application logic for pget commands.
//
// Operations return output structs; rendering helpers turn those into the
// table, plain, JSON, and YAML formats the CLI exposes. Keeping rendering
// here keeps it out of the engine.
package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rodaine/table"
	"gopkg.in/yaml.v3"

	"github.com/Byteram/pget/internal/registry"
)

// AppInfo describes one installed application as shown to the user.
type AppInfo struct {
	Name    string `json:"name" yaml:"name"`
	Kind    string `json:"kind" yaml:"kind"`
	Command string `json:"command" yaml:"command"`
	Support string `json:"support,omitempty" yaml:"support,omitempty"`
}

// ListOutput contains the result of the list operation.
type ListOutput struct {
	Root string    `json:"root" yaml:"root"`
	Apps []AppInfo `json:"apps" yaml:"apps"`
}

// List enumerates the applications installed under root.
func List(root string) (*ListOutput, error) {
	entries, err := registry.NewReader(root).Entries()
	if err != nil {
		return nil, fmt.Errorf("listing installed applications: %w", err)
	}

	out := &ListOutput{Root: root, Apps: make([]AppInfo, 0, len(entries))}
	for _, e := range entries {
		out.Apps = append(out.Apps, AppInfo{
			Name:    e.Name,
			Kind:    e.Kind.String(),
			Command: e.CommandPath,
			Support: e.SupportDir,
		})
	}
	return out, nil
}

// PrintList renders the list as an aligned table.
func PrintList(w io.Writer, out *ListOutput) {
	if len(out.Apps) == 0 {
		fmt.Fprintln(w, "No applications installed.")
		return
	}

	tbl := table.New("NAME", "KIND", "COMMAND").WithWriter(w)
	for _, a := range out.Apps {
		tbl.AddRow(a.Name, a.Kind, a.Command)
	}
	tbl.Print()
}

// PrintListPlain renders one identifier per line, for scripts.
func PrintListPlain(w io.Writer, out *ListOutput) {
	for _, a := range out.Apps {
		fmt.Fprintln(w, a.Name)
	}
}

// PrintJSON renders an output value as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintYAML renders an output value as YAML.
func PrintYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}
