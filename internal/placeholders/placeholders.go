// Package placeholders provides {token} parsing and substitution for
// configured templates, such as the remote source URL and the archive
// top-level directory name.
package placeholders

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// placeholderRegex matches {token} markers in templates.
	placeholderRegex = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_-]*)\}`)
)

// Extract extracts all unique placeholder names from a template.
func Extract(s string) []string {
	matches := placeholderRegex.FindAllStringSubmatch(s, -1)
	seen := make(map[string]bool)
	var result []string

	for _, m := range matches {
		if len(m) > 1 {
			name := m[1]
			if !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
	}

	return result
}

// Has reports whether the template references the named placeholder.
func Has(s, name string) bool {
	for _, got := range Extract(s) {
		if got == name {
			return true
		}
	}
	return false
}

// Substitute replaces placeholders with values.
// Returns an error if any placeholders are missing.
func Substitute(s string, values map[string]string) (string, error) {
	result := s
	var missing []string

	matches := placeholderRegex.FindAllStringSubmatch(s, -1)
	seen := make(map[string]bool)

	for _, m := range matches {
		if len(m) > 1 {
			name := m[1]
			placeholder := m[0]

			if seen[name] {
				continue
			}
			seen[name] = true

			value, ok := values[name]
			if !ok {
				missing = append(missing, name)
				continue
			}
			result = strings.ReplaceAll(result, placeholder, value)
		}
	}

	if len(missing) > 0 {
		return "", &MissingError{MissingNames: missing}
	}

	return result, nil
}

// MissingError is returned when placeholders are missing values.
type MissingError struct {
	MissingNames []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing placeholders: %s", strings.Join(e.MissingNames, ", "))
}

// Missing returns the list of missing placeholder names.
func (e *MissingError) Missing() []string {
	return e.MissingNames
}
