// Package docwriter records executed examples as Markdown documentation.
package docwriter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oaswire/oaswire/internal/runner"
)

// Options controls how documentation files are written.
type Options struct {
	OutDir string // required; target directory
	Force  bool   // overwrite non-empty output directories
	DryRun bool   // plan only, write nothing
}

// PlannedFile describes a file the writer intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files.
type Result struct {
	Planned []PlannedFile
}

// Write renders one Markdown document per example group.
func Write(group *runner.Group, results []runner.Result, opts Options) (*Result, error) {
	if group == nil {
		return nil, fmt.Errorf("docwriter: nil group")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("docwriter: OutDir is required")
	}

	files := map[string][]byte{
		sanitizeFileName(group.Name) + ".md": renderGroup(group, results),
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
	}

	if !opts.DryRun {
		if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}
	return &Result{Planned: planned}, nil
}

func renderGroup(group *runner.Group, results []runner.Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", group.Name)
	if group.BaseURL != "" {
		fmt.Fprintf(&b, "Base URL: `%s`\n\n", group.BaseURL)
	}

	for _, res := range results {
		name := res.Example.Name
		if name == "" {
			name = res.Example.Operation
		}
		fmt.Fprintf(&b, "## %s\n\n", name)

		if res.Request != nil {
			fmt.Fprintf(&b, "```\n%s %s\n", res.Request.Verb, res.Request.Path)
			for _, header := range sortedHeaders(res.Request.Headers) {
				fmt.Fprintf(&b, "%s: %s\n", header, res.Request.Headers[header])
			}
			b.WriteString("```\n\n")
			if body := renderPayload(res.Request.Payload); body != "" {
				fmt.Fprintf(&b, "Request body:\n\n```\n%s\n```\n\n", body)
			}
		}
		if res.StatusCode != 0 {
			fmt.Fprintf(&b, "Response status: `%d`\n\n", res.StatusCode)
		}
		if res.Err != nil {
			fmt.Fprintf(&b, "Failure: %s\n\n", res.Err)
		}
	}
	return []byte(b.String())
}

func renderPayload(payload any) string {
	switch body := payload.(type) {
	case nil:
		return ""
	case string:
		// Pretty-print JSON text so the docs stay readable.
		var decoded any
		if err := json.Unmarshal([]byte(body), &decoded); err == nil {
			if pretty, err := json.MarshalIndent(decoded, "", "  "); err == nil {
				return string(pretty)
			}
		}
		return body
	default:
		if pretty, err := json.MarshalIndent(body, "", "  "); err == nil {
			return string(pretty)
		}
		return fmt.Sprintf("%v", body)
	}
}

func sortedHeaders(headers map[string]string) []string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("docwriter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return "examples"
	}
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "/", "-")
	b := strings.Builder{}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "examples"
	}
	return out
}
