package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oaswire/oaswire/internal/docwriter"
	"github.com/oaswire/oaswire/internal/runner"
	genspec "github.com/oaswire/oaswire/internal/spec"
)

// RunConfig captures all inputs that influence the run command after merging
// defaults, config file values, and CLI overrides.
type RunConfig struct {
	Spec        string
	Examples    string
	Out         string
	BaseURL     string
	IncludeTags []string
	ExcludeTags []string
	ConfigPath  string
	DryRun      bool
	Force       bool
	Verbose     bool
}

func defaultRunConfig() RunConfig {
	return RunConfig{Out: "docs"}
}

var runRunner = runRun

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute an example group against a live server and write documentation",
		Long: "Execute an example group against a live server and write documentation. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  oaswire run --spec api.yaml --examples petstore.yaml --out ./docs
  oaswire --config config.yaml run --base-url http://localhost:8080 --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveRunConfig(cmd)
			if err != nil {
				return err
			}
			return runRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("spec", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("examples", "", "Path to the example-group file")
	flags.String("out", "", "Documentation output directory (default ./docs)")
	flags.String("base-url", "", "Override the example group's base URL")
	flags.StringSlice("include-tags", nil, "Only run examples whose operations have these tags")
	flags.StringSlice("exclude-tags", nil, "Skip examples whose operations have these tags")
	flags.Bool("dry-run", false, "Build requests and plan outputs without dispatching or writing")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveRunConfig(cmd *cobra.Command) (*RunConfig, error) {
	cfg := defaultRunConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyRunConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyRunFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyRunFlagOverrides(flags *pflag.FlagSet, cfg *RunConfig) error {
	if flags.Changed("spec") {
		value, err := flags.GetString("spec")
		if err != nil {
			return err
		}
		cfg.Spec = strings.TrimSpace(value)
	}
	if flags.Changed("examples") {
		value, err := flags.GetString("examples")
		if err != nil {
			return err
		}
		cfg.Examples = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("base-url") {
		value, err := flags.GetString("base-url")
		if err != nil {
			return err
		}
		cfg.BaseURL = strings.TrimSpace(value)
	}
	if flags.Changed("include-tags") {
		value, err := flags.GetStringSlice("include-tags")
		if err != nil {
			return err
		}
		cfg.IncludeTags = sanitizeTags(value)
	}
	if flags.Changed("exclude-tags") {
		value, err := flags.GetStringSlice("exclude-tags")
		if err != nil {
			return err
		}
		cfg.ExcludeTags = sanitizeTags(value)
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *RunConfig) normalize() {
	c.Spec = strings.TrimSpace(c.Spec)
	c.Examples = strings.TrimSpace(c.Examples)
	c.Out = strings.TrimSpace(c.Out)
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
	if c.Out == "" {
		c.Out = "docs"
	}
}

func (c *RunConfig) validate() error {
	if c.Spec == "" {
		return newUsageError("run: --spec is required (set via flag or config file)")
	}
	if c.Examples == "" {
		return newUsageError("run: --examples is required (set via flag or config file)")
	}
	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("run: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}
	return nil
}

func runRun(ctx context.Context, cfg *RunConfig) error {
	doc, err := loadSpec(ctx, cfg.Spec)
	if err != nil {
		return err
	}

	group, err := runner.LoadGroup(cfg.Examples)
	if err != nil {
		return newUsageError(err.Error())
	}
	if cfg.BaseURL != "" {
		group.BaseURL = cfg.BaseURL
	}
	filterGroup(doc, group, cfg.IncludeTags, cfg.ExcludeTags)

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	if cfg.DryRun {
		return planRun(doc, group, absOut, cfg)
	}

	level := hclog.Info
	if cfg.Verbose {
		level = hclog.Debug
	}
	r := runner.New(runner.Options{
		Logger: hclog.New(&hclog.LoggerOptions{Name: "oaswire", Level: level}),
	})

	results, runErr := r.Run(ctx, doc, group)

	// Failed examples still get documented; the failure is reported after
	// the docs are on disk.
	res, werr := docwriter.Write(group, results, docwriter.Options{
		OutDir: cfg.Out,
		Force:  cfg.Force,
	})
	if werr != nil {
		return wrapOutputError(werr, absOut)
	}
	fmt.Fprintf(os.Stdout, "Wrote %d documentation file(s) to %s\n", len(res.Planned), absOut)

	return runErr
}

// planRun builds every request without dispatching and prints the plan.
func planRun(doc genspec.Document, group *runner.Group, absOut string, cfg *RunConfig) error {
	built := 0
	for _, ex := range group.Examples {
		op, ok := genspec.FindOperation(doc, ex.Operation)
		if !ok {
			return fmt.Errorf("operation %q not found in document", ex.Operation)
		}
		if _, err := buildExample(doc, op, ex); err != nil {
			return fmt.Errorf("example %q: %w", ex.Operation, err)
		}
		built++
	}
	res, err := docwriter.Write(group, nil, docwriter.Options{OutDir: cfg.Out, DryRun: true})
	if err != nil {
		return wrapOutputError(err, absOut)
	}
	printPlan(absOut, built, plannedPaths(res.Planned))
	return nil
}

func plannedPaths(planned []docwriter.PlannedFile) []string {
	paths := make([]string, 0, len(planned))
	for _, p := range planned {
		paths = append(paths, p.RelPath)
	}
	return paths
}

// filterGroup drops examples whose target operation is excluded by tags.
func filterGroup(doc genspec.Document, group *runner.Group, include, exclude []string) {
	if len(include) == 0 && len(exclude) == 0 {
		return
	}
	allowed := map[string]struct{}{}
	for _, op := range genspec.Operations(doc, genspec.WithIncludeTags(include), genspec.WithExcludeTags(exclude)) {
		allowed[op.ID] = struct{}{}
	}
	kept := group.Examples[:0]
	for _, ex := range group.Examples {
		fields := strings.Fields(ex.Operation)
		if len(fields) == 2 {
			id := strings.ToLower(fields[0]) + " " + fields[1]
			if _, ok := allowed[id]; !ok {
				continue
			}
		}
		kept = append(kept, ex)
	}
	group.Examples = kept
}

func loadSpec(ctx context.Context, input string) (genspec.Document, error) {
	doc, err := genspec.Load(ctx, input)
	if err != nil {
		var se *genspec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			return nil, newUsageError(msg)
		}
		return nil, err
	}
	return doc, nil
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned %d request(s); writes to %s:\n", count, outDir)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}
