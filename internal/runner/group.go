package runner

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Example is one documented request: an operation selector plus the concrete
// values that fill it in.
type Example struct {
	// Name labels the example in logs and documentation output.
	Name string `yaml:"name"`
	// Operation selects the target operation, e.g. "GET /pets/{id}".
	Operation string `yaml:"operation"`
	// Values supplies parameter values by name.
	Values map[string]any `yaml:"values"`
	// Headers supplies header values by name.
	Headers map[string]any `yaml:"headers"`
	// ExpectStatus is the response status the example asserts; 0 skips
	// the assertion.
	ExpectStatus int `yaml:"expect_status"`
}

// Group is a named collection of examples executed against one base URL.
type Group struct {
	Name     string    `yaml:"name"`
	BaseURL  string    `yaml:"base_url"`
	Examples []Example `yaml:"examples"`
}

// LoadGroup reads an example-group file.
func LoadGroup(path string) (*Group, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read example group %s: %w", path, err)
	}
	var g Group
	if err := yaml.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("parse example group %s: %w", path, err)
	}
	if g.Name == "" {
		g.Name = groupNameFromPath(path)
	}
	for i, ex := range g.Examples {
		if strings.TrimSpace(ex.Operation) == "" {
			return nil, fmt.Errorf("example group %s: example %d has no operation selector", path, i+1)
		}
	}
	return &g, nil
}

func groupNameFromPath(path string) string {
	base := path
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}
