package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/pkg/graph"
)

// fetchCommand creates the fetch command, which downloads a raw graph.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		flags  graphFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a raw code graph from the backend",
		Long: `Fetch a raw code graph from the backend and write it as JSON.

The output is the backend payload restricted to the requested languages and
limit. It can be fed back to the other commands with --file, which is handy
for offline work and for sharing a snapshot of a project.

Responses are cached; use --refresh to bypass the cache.`,
		Example: `  codegraph fetch -p my-project -o my-project.json
  codegraph fetch -p my-project -L go -L python --threshold 0.7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.resolve(cmd, c.Config.Graph)
			return c.runFetch(cmd.Context(), flags, output)
		},
	}

	flags.registerFilters(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, flags graphFlags, output string) error {
	runner, err := c.newRunner(ctx, flags.file, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Fetching graph...")
	spinner.Start()
	defer trackStages(spinner)()

	snap, err := runner.Fetch(ctx, flags.options())
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return err
	}
	spinner.Stop()

	if output == "" {
		data, err := graph.MarshalRaw(snap.Raw)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := graph.WriteRawFile(snap.Raw, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Fetched %s", StyleHighlight.Render(flags.project))
	printFile(output)
	printStats(graphStats{nodes: snap.Stats.Nodes, edges: snap.Stats.Edges})
	if snap.Stats.DroppedNodes > 0 || snap.Stats.DroppedEdges > 0 {
		printWarning("Dropped %d invalid nodes and %d dangling links", snap.Stats.DroppedNodes, snap.Stats.DroppedEdges)
	}
	printNewline()
	printNextStep("Render", "codegraph render --file "+output+" -F svg")

	return nil
}
