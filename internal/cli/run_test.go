package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/oaswire/oaswire/internal/runner"
	genspec "github.com/oaswire/oaswire/internal/spec"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func execRoot(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(new(strings.Builder))
	cmd.SetErr(new(strings.Builder))
	return cmd.Execute()
}

func TestRunConfigLayering(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yaml", `
spec: api.yaml
examples: petstore.yaml
out: from-config
base-url: http://localhost:8080
include-tags:
  - pets
  - store
`)

	var captured *RunConfig
	prev := runRunner
	runRunner = func(ctx context.Context, cfg *RunConfig) error {
		captured = cfg
		return nil
	}
	defer func() { runRunner = prev }()

	if err := execRoot(t, "--config", configPath, "run", "--out", "from-flag"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil {
		t.Fatalf("run entry point not reached")
	}

	if captured.Spec != "api.yaml" {
		t.Fatalf("Spec = %q", captured.Spec)
	}
	if captured.Examples != "petstore.yaml" {
		t.Fatalf("Examples = %q", captured.Examples)
	}
	if captured.Out != "from-flag" {
		t.Fatalf("flag should override config, Out = %q", captured.Out)
	}
	if captured.BaseURL != "http://localhost:8080" {
		t.Fatalf("BaseURL = %q", captured.BaseURL)
	}
	if !reflect.DeepEqual(captured.IncludeTags, []string{"pets", "store"}) {
		t.Fatalf("IncludeTags = %v", captured.IncludeTags)
	}
}

func TestRunConfigDefaults(t *testing.T) {
	var captured *RunConfig
	prev := runRunner
	runRunner = func(ctx context.Context, cfg *RunConfig) error {
		captured = cfg
		return nil
	}
	defer func() { runRunner = prev }()

	if err := execRoot(t, "run", "--spec", "api.yaml", "--examples", "ex.yaml"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured.Out != "docs" {
		t.Fatalf("default Out = %q, want docs", captured.Out)
	}
	if captured.DryRun || captured.Force || captured.Verbose {
		t.Fatalf("boolean defaults should be false: %+v", captured)
	}
}

func TestRunConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"missing spec", []string{"run", "--examples", "ex.yaml"}, "--spec is required"},
		{"missing examples", []string{"run", "--spec", "api.yaml"}, "--examples is required"},
		{
			"tag overlap",
			[]string{"run", "--spec", "api.yaml", "--examples", "ex.yaml", "--include-tags", "pets", "--exclude-tags", "pets"},
			"overlap",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := execRoot(t, tc.args...)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q should mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestRunConfigUnknownField(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yaml", "spec: api.yaml\nbogus: true\n")

	err := execRoot(t, "--config", configPath, "run")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("expected usage error naming the field, got %v", err)
	}
}

func TestRunUnknownFlagIsUsageError(t *testing.T) {
	err := execRoot(t, "run", "--definitely-not-a-flag")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestFilterGroup(t *testing.T) {
	var doc genspec.Document
	if err := yaml.Unmarshal([]byte(`
openapi: 3.0.0
paths:
  /pets:
    get:
      tags: [pets]
      responses:
        '200':
          description: ok
  /orders:
    get:
      tags: [store]
      responses:
        '200':
          description: ok
`), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	group := &runner.Group{
		Examples: []runner.Example{
			{Name: "pets", Operation: "GET /pets"},
			{Name: "orders", Operation: "GET /orders"},
		},
	}
	filterGroup(doc, group, []string{"pets"}, nil)
	if len(group.Examples) != 1 || group.Examples[0].Name != "pets" {
		t.Fatalf("filtered examples = %+v", group.Examples)
	}

	group = &runner.Group{
		Examples: []runner.Example{
			{Name: "pets", Operation: "GET /pets"},
			{Name: "orders", Operation: "GET /orders"},
		},
	}
	filterGroup(doc, group, nil, []string{"store"})
	if len(group.Examples) != 1 || group.Examples[0].Name != "pets" {
		t.Fatalf("filtered examples = %+v", group.Examples)
	}
}

func TestSanitizeTags(t *testing.T) {
	got := sanitizeTags([]string{" pets ", "", "pets", "store"})
	if !reflect.DeepEqual(got, []string{"pets", "store"}) {
		t.Fatalf("sanitizeTags = %v", got)
	}
	if sanitizeTags([]string{"  ", ""}) != nil {
		t.Fatalf("blank-only input should yield nil")
	}
}

func TestIntersect(t *testing.T) {
	got := intersect([]string{"a", "b"}, []string{"b", "c"})
	if !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("intersect = %v", got)
	}
	if intersect(nil, []string{"a"}) != nil {
		t.Fatalf("nil side should yield nil")
	}
}
