package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	"github.com/matzehuels/codegraph/pkg/codegraph/search"
	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/render/nodelink"
)

// layoutCommand creates the layout command, which writes the positioned
// render graph a force-graph renderer consumes.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  graphFlags
		query  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Cluster and lay out a code graph",
		Long: `Cluster and lay out a code graph and write the render graph as JSON.

Every node in the output carries its position, colour and size, and links
carry their weight as "value", which is what browser force-graph renderers
expect. The force layout is settled with Graphviz (fdp); the circular,
hierarchical and grid layouts are computed directly.

Search matches are flagged with "highlighted" when --search is given.`,
		Example: `  codegraph layout -p my-project -l hierarchical -o graph.json
  codegraph layout --file snapshot.json --cluster=false -s parse`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.resolve(cmd, c.Config.Graph)
			return c.runLayout(cmd.Context(), flags, query, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&query, "search", "s", "", "highlight nodes matching this query")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <project>.layout.json)")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, flags graphFlags, query, output string) error {
	runner, err := c.newRunner(ctx, flags.file, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	runner.Engine = layout.New(nodelink.NewSimulation(ctx, c.Logger), layout.Options{})

	opts := flags.options()
	opts.Search = query

	spinner := newSpinnerWithContext(ctx, "Fetching graph...")
	spinner.Start()
	defer trackStages(spinner)()

	snap, err := runner.Fetch(ctx, opts)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return err
	}
	g, err := runner.Arrange(ctx, snap, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "" {
		output = flags.project + ".layout.json"
	}
	if err := graph.WriteRenderFile(graph.FromGraph(g), output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete (%s)", opts.Strategy())
	printFile(output)
	printStats(graphStats{
		nodes:    g.NodeCount(),
		edges:    g.EdgeCount(),
		clusters: len(g.Clusters()),
		matches:  len(search.Matches(g, query)),
	})
	printNewline()
	printNextStep("Serve", "codegraph serve -p "+flags.project)

	return nil
}
