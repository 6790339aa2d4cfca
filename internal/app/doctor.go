package app

import (
	"fmt"
	"io"

	"github.com/rodaine/table"

	"github.com/Byteram/pget/internal/engine"
)

// DoctorEntry describes one health finding as shown to the user.
type DoctorEntry struct {
	Name    string `json:"name" yaml:"name"`
	Kind    string `json:"kind" yaml:"kind"`
	Healthy bool   `json:"healthy" yaml:"healthy"`
	Detail  string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// DoctorOutput contains the result of the doctor scan.
type DoctorOutput struct {
	Root     string        `json:"root" yaml:"root"`
	Healthy  bool          `json:"healthy" yaml:"healthy"`
	Findings []DoctorEntry `json:"findings" yaml:"findings"`
}

// Doctor runs the engine's read-only corruption scan over the installation
// root.
func Doctor(e *engine.Engine) (*DoctorOutput, error) {
	findings, err := e.Doctor()
	if err != nil {
		return nil, fmt.Errorf("scanning installation root: %w", err)
	}

	out := &DoctorOutput{
		Root:     e.Root(),
		Healthy:  true,
		Findings: make([]DoctorEntry, 0, len(findings)),
	}
	for _, f := range findings {
		if !f.Healthy {
			out.Healthy = false
		}
		out.Findings = append(out.Findings, DoctorEntry{
			Name:    f.Name,
			Kind:    f.Kind.String(),
			Healthy: f.Healthy,
			Detail:  f.Detail,
		})
	}
	return out, nil
}

// PrintDoctor renders findings as an aligned table.
func PrintDoctor(w io.Writer, out *DoctorOutput) {
	if len(out.Findings) == 0 {
		fmt.Fprintln(w, "Nothing installed; nothing to check.")
		return
	}

	tbl := table.New("NAME", "KIND", "STATUS").WithWriter(w)
	for _, f := range out.Findings {
		tbl.AddRow(f.Name, f.Kind, doctorStatus(f))
	}
	tbl.Print()
}

// PrintDoctorPlain renders one "name: status" line per finding.
func PrintDoctorPlain(w io.Writer, out *DoctorOutput) {
	for _, f := range out.Findings {
		fmt.Fprintf(w, "%s: %s\n", f.Name, doctorStatus(f))
	}
}

func doctorStatus(f DoctorEntry) string {
	if f.Healthy {
		return "ok"
	}
	return f.Detail
}
