package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
		Long: `Manage the cache of backend responses and rendered artifacts.

The cache lives on disk unless cache.redis_url is configured, in which case
the commands act on the codegraph keys in Redis.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cachePruneCommand())
	cmd.AddCommand(c.cacheStatsCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if c.Config.Cache.RedisURL != "" {
				rc, err := c.redisCache(ctx)
				if err != nil {
					return err
				}
				defer rc.Close()
				n, err := rc.Clear(ctx)
				if err != nil {
					return fmt.Errorf("clear redis cache: %w", err)
				}
				printSuccess("Cleared %d cached entries", n)
				printDetail("Redis: %s", redisPrefix+"*")
				return nil
			}

			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			entries, _, err := fc.Stats()
			if err != nil {
				return fmt.Errorf("scan cache: %w", err)
			}
			if err := fc.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", entries)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// cachePruneCommand creates the "cache prune" subcommand. Redis expires
// entries by itself, so it only acts on the file cache.
func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired entries from the file cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.RedisURL != "" {
				printInfo("Redis expires entries on its own; nothing to prune")
				return nil
			}
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			n, err := fc.Prune(cmd.Context())
			if err != nil {
				return fmt.Errorf("prune cache: %w", err)
			}
			printSuccess("Pruned %d expired entries", n)
			return nil
		},
	}
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number and size of cached entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if c.Config.Cache.RedisURL != "" {
				rc, err := c.redisCache(ctx)
				if err != nil {
					return err
				}
				defer rc.Close()
				n, err := rc.Stats(ctx)
				if err != nil {
					return fmt.Errorf("scan redis cache: %w", err)
				}
				printKeyValue("Entries", fmt.Sprint(n))
				printKeyValue("Backend", "redis")
				return nil
			}

			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			entries, size, err := fc.Stats()
			if err != nil {
				return fmt.Errorf("scan cache: %w", err)
			}
			printKeyValue("Entries", fmt.Sprint(entries))
			printKeyValue("Size", formatBytes(size))
			printKeyValue("Directory", dir)
			return nil
		},
	}
}

func (c *CLI) redisCache(ctx context.Context) (*cache.RedisCache, error) {
	return cache.NewRedisCache(ctx, cache.RedisOptions{URL: c.Config.Cache.RedisURL, Prefix: redisPrefix})
}

// formatBytes renders n with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
