package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/internal/config"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
		Long: `Inspect or create the configuration file.

Settings are layered: built-in defaults, then the config file, then
CODEGRAPH_* environment variables (nested keys joined with "__", for example
CODEGRAPH_GRAPH__MIN_SIZE=5), then command-line flags.`,
	}

	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())
	return cmd
}

// configFile returns --config or the default location.
func (c *CLI) configFile() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.DefaultPath()
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configFile()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Long: `Print the effective configuration after defaults, the config file and
environment variables are merged. The backend token is never printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *c.Config
			cfg.Backend.Token = ""
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	}
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configFile()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				printWarning("Config already exists: %s", path)
				printNextStep("Overwrite with", "codegraph config init --force")
				return nil
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			printSuccess("Wrote default configuration")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
