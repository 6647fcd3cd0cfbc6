package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/pkg/codegraph/search"
)

// searchCommand creates the search command, which lists the nodes matching
// a query.
func (c *CLI) searchCommand() *cobra.Command {
	var flags graphFlags

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "List nodes matching a query",
		Long: `List the nodes whose name, file path or language contains the query,
ignoring case.

Matching runs on the unclustered graph so nodes inside large language
groups are found too.`,
		Example: `  codegraph search parse -p my-project
  codegraph search .py --file snapshot.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.resolve(cmd, c.Config.Graph)
			return c.runSearch(cmd.Context(), flags, strings.Join(args, " "))
		},
	}

	flags.registerFilters(cmd)
	return cmd
}

func (c *CLI) runSearch(ctx context.Context, flags graphFlags, query string) error {
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

	matches := search.Matches(search.Highlight(snap.Graph, query), query)
	if len(matches) == 0 {
		printInfo("No nodes match %s", StyleHighlight.Render(query))
		return nil
	}

	printSuccess("%d of %d nodes match %s", len(matches), snap.Graph.NodeCount(), StyleHighlight.Render(query))
	fmt.Println(nodeTable(matches, -1))
	return nil
}
