package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	"github.com/matzehuels/codegraph/pkg/pipeline"
	"github.com/matzehuels/codegraph/pkg/render/nodelink"
)

// renderCommand creates the render command, which runs the whole pipeline
// and writes JSON, DOT or SVG artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags    graphFlags
		query    string
		output   string
		formats  []string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a code graph to JSON, DOT or SVG",
		Long: `Render a code graph to JSON, Graphviz DOT or SVG.

The graph is fetched, clustered, laid out and searched exactly as in the
interactive views. SVG output is drawn by Graphviz using the computed
positions, so the picture matches what the browser renderer shows.

With a single format, --output names the file. With several, --output is a
base path and each format gets its extension appended.`,
		Example: `  codegraph render -p my-project -F svg -o graph.svg
  codegraph render --file snapshot.json -F json,dot,svg -o out/graph --detailed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.resolve(cmd, c.Config.Graph)
			return c.runRender(cmd.Context(), flags, query, output, parseFormats(formats), detailed)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&query, "search", "s", "", "highlight nodes matching this query")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or base path (default: <project>)")
	cmd.Flags().StringSliceVarP(&formats, "format", "F", []string{pipeline.FormatSVG}, "output formats: json, dot, svg")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with kind, language and file")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, flags graphFlags, query, output string, formats []string, detailed bool) error {
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.file, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	runner.Engine = layout.New(nodelink.NewSimulation(ctx, c.Logger), layout.Options{})

	opts := flags.options()
	opts.Search = query
	opts.Formats = formats
	opts.Detailed = detailed

	spinner := newSpinnerWithContext(ctx, "Fetching graph...")
	spinner.Start()
	defer trackStages(spinner)()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, formats, output, flags.project)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", StyleHighlight.Render(flags.project))
	for _, p := range paths {
		printFile(p)
	}
	printStats(graphStats{
		nodes:    result.Stats.NodeCount,
		edges:    result.Stats.EdgeCount,
		clusters: result.Stats.Clusters,
		matches:  result.Stats.Matches,
		cached:   result.CacheInfo.RenderHit,
	})
	return nil
}

// writeArtifacts writes one file per format and returns the paths in format
// order.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, project string) ([]string, error) {
	base := output
	if base == "" {
		base = project
	}
	single := len(formats) == 1 && output != ""

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			return nil, fmt.Errorf("no %s output produced", format)
		}
		path := base
		if !single {
			path = strings.TrimSuffix(base, "."+format) + "." + format
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write output %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// parseFormats normalizes --format values, accepting both repeated flags and
// comma-separated lists. Duplicates are dropped.
func parseFormats(in []string) []string {
	if len(in) == 0 {
		return []string{pipeline.FormatSVG}
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, f := range in {
		for _, part := range strings.Split(f, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}
