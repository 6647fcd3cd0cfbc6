package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/internal/config"
	"github.com/matzehuels/codegraph/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs, the configuration is loaded from --config (or
// the default path) and CODEGRAPH_* variables, and the log level is set from
// it unless --verbose forces debug. The logger is attached to the command
// context for loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Codegraph explores code-relationship graphs",
		Long: `Codegraph fetches code-relationship graphs from a vectorization backend,
clusters them by language, lays them out, highlights search matches, and
renders them as JSON, Graphviz DOT or SVG. It can also serve an interactive
graph to a browser renderer or explore it in the terminal.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/codegraph/config.toml)")

	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	for _, cmd := range root.Commands() {
		registerFlagCompletions(cmd)
	}
	return root
}

func (c *CLI) loadConfig(cmd *cobra.Command) error {
	path := c.configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg

	level, _ := cfg.LogLevel()
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	c.Logger.Debug("configuration loaded", "path", path)

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}
