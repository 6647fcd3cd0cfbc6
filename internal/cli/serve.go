package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/internal/server"
	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	"github.com/matzehuels/codegraph/pkg/controller"
	"github.com/matzehuels/codegraph/pkg/observability"
)

// serveCommand creates the serve command, which runs the HTTP and websocket
// server for the browser renderer.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags graphFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph to the browser renderer",
		Long: `Serve the graph controller over HTTP and a websocket.

The browser renderer reads the current graph from /api/graph, sends filter,
search, layout and click events to the /api routes, and receives updates on
/ws. When a project is given, it is loaded in the background on start.`,
		Example: `  codegraph serve -p my-project
  codegraph serve --addr :9000 --file snapshot.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.resolve(cmd, c.Config.Graph)
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: from config)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, flags graphFlags) error {
	logger := loggerFromContext(ctx)
	observability.Register(observability.NewLogHooks(logger))
	defer observability.Reset()

	src, ch, err := c.newSource(ctx, flags.file, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize source: %w", err)
	}
	defer ch.Close()

	strategy, err := layout.ParseStrategy(flags.layout)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Addr:           c.Config.Server.Addr,
		AllowedOrigins: c.Config.Server.AllowedOrigins,
		Source:         src,
		Strategy:       strategy,
		InferLanguage:  flags.inferLanguage,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	if f := flags.filters(); f.Project != "" {
		go c.preload(ctx, srv.Controller(), f)
	}

	printSuccess("Serving on %s", StyleHighlight.Render("http://"+c.Config.Server.Addr))
	printNextStep("Stop with", "ctrl+c")

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// preload loads the initial project so the first renderer finds a graph.
func (c *CLI) preload(ctx context.Context, ctrl *controller.Controller, f controller.Filters) {
	logger := loggerFromContext(ctx).With(filterFields(f)...)
	p := newProgress(logger)
	if err := ctrl.Load(ctx, f); err != nil {
		if !errors.Is(err, controller.ErrSuperseded) && ctx.Err() == nil {
			logger.Warn("initial load failed", "error", err)
		}
		return
	}
	g := ctrl.Graph()
	p.done("graph loaded", "nodes", g.NodeCount(), "edges", g.EdgeCount())
}
