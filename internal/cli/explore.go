package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	"github.com/matzehuels/codegraph/pkg/controller"
	"github.com/matzehuels/codegraph/pkg/perf"
	"github.com/matzehuels/codegraph/pkg/render/nodelink"
)

// exploreCommand creates the explore command, an interactive terminal view
// over the graph controller.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		flags graphFlags
		fps   bool
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse a code graph interactively",
		Long: `Browse a code graph interactively in the terminal.

The explorer lists the current nodes and reacts to keys the same way the
browser view reacts to clicks: enter expands a cluster, / searches, l cycles
the layout strategy and c toggles language clustering.`,
		Example: `  codegraph explore -p my-project
  codegraph explore --file snapshot.json --fps`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.resolve(cmd, c.Config.Graph)
			return c.runExplore(cmd.Context(), flags, fps)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&fps, "fps", false, "show the frame rate")
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, flags graphFlags, fps bool) error {
	src, ch, err := c.newSource(ctx, flags.file, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize source: %w", err)
	}
	defer ch.Close()

	strategy, err := layout.ParseStrategy(flags.layout)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The terminal belongs to the program; logs would tear the screen.
	quiet := newLogger(io.Discard, c.Logger.GetLevel())
	ctrl := controller.New(controller.Options{
		Source:        src,
		Engine:        layout.New(nodelink.NewSimulation(ctx, quiet), layout.Options{}),
		Strategy:      strategy,
		InferLanguage: flags.inferLanguage,
		Logger:        quiet,
	})

	monitor := perf.New(time.Now())
	monitor.SetEnabled(fps, time.Now())

	model := NewExplorerModel(ctx, ctrl, monitor, flags.filters())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := ctrl.Subscribe(func(ev controller.Event) {
		p.Send(eventMsg(ev))
	})
	defer unsubscribe()

	go monitor.Run(ctx, perf.DefaultInterval, func(s perf.Sample) {
		p.Send(fpsMsg(s))
	})

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("explorer: %w", err)
	}
	if m, ok := final.(ExplorerModel); ok && m.ctrl.State() == controller.Error {
		printWarning("Exited with error: %v", m.ctrl.Err())
	}
	return nil
}
