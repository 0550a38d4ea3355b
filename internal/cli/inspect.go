package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oaswire/oaswire/internal/request"
	genspec "github.com/oaswire/oaswire/internal/spec"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Build and print the request descriptor for one operation",
		Long: "Build the wire-ready request descriptor for a single operation and print it " +
			"without dispatching anything.",
		Example: strings.TrimSpace(`  oaswire inspect --spec api.yaml --operation "GET /pets/{id}" --set id=42
  oaswire inspect --spec api.yaml --operation "POST /pets" --set 'pet={"name":"Fido"}' --header X-Api-Key=secret`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd)
		},
	}

	flags := cmd.Flags()
	flags.String("spec", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("operation", "", `Operation selector, e.g. "GET /pets/{id}"`)
	flags.StringArray("set", nil, "Parameter value as name=value (repeatable; value may be YAML)")
	flags.StringArray("header", nil, "Header value as name=value (repeatable)")

	return cmd
}

func runInspect(cmd *cobra.Command) error {
	flags := cmd.Flags()
	specPath, err := flags.GetString("spec")
	if err != nil {
		return err
	}
	selector, err := flags.GetString("operation")
	if err != nil {
		return err
	}
	sets, err := flags.GetStringArray("set")
	if err != nil {
		return err
	}
	headers, err := flags.GetStringArray("header")
	if err != nil {
		return err
	}

	specPath = strings.TrimSpace(specPath)
	selector = strings.TrimSpace(selector)
	if specPath == "" {
		return newUsageError("inspect: --spec is required")
	}
	if selector == "" {
		return newUsageError("inspect: --operation is required")
	}

	values, err := parseAssignments(sets, "--set")
	if err != nil {
		return err
	}
	headerValues, err := parseAssignments(headers, "--header")
	if err != nil {
		return err
	}

	doc, err := loadSpec(cmd.Context(), specPath)
	if err != nil {
		return err
	}
	op, ok := genspec.FindOperation(doc, selector)
	if !ok {
		return newUsageError(fmt.Sprintf("inspect: operation %q not found in document", selector))
	}

	req, err := request.Build(doc, op, values, headerValues)
	if err != nil {
		return err
	}
	return printRequest(cmd, req)
}

// parseAssignments turns repeated name=value flags into a value mapping.
// Values parse as YAML scalars/structures so numbers, booleans, lists, and
// inline objects come through typed.
func parseAssignments(pairs []string, flagName string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		eq := strings.Index(pair, "=")
		if eq <= 0 {
			return nil, newUsageError(fmt.Sprintf("inspect: %s %q is not of the form name=value", flagName, pair))
		}
		name := strings.TrimSpace(pair[:eq])
		rawValue := pair[eq+1:]
		var value any
		if err := yaml.Unmarshal([]byte(rawValue), &value); err != nil {
			value = rawValue
		}
		out[name] = value
	}
	return out, nil
}

func printRequest(cmd *cobra.Command, req *request.Request) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", req.Verb, req.Path)

	names := make([]string, 0, len(req.Headers))
	for name := range req.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s: %s\n", name, req.Headers[name])
	}

	if req.Payload != nil {
		fmt.Fprintln(out)
		switch payload := req.Payload.(type) {
		case string:
			fmt.Fprintln(out, payload)
		default:
			encoded, err := yaml.Marshal(payload)
			if err != nil {
				return fmt.Errorf("render payload: %w", err)
			}
			fmt.Fprint(out, string(encoded))
		}
	}
	return nil
}
