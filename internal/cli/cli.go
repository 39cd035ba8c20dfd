package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plotmap/pkg/buildinfo"
	"github.com/matzehuels/plotmap/pkg/cache"
	"github.com/matzehuels/plotmap/pkg/config"
	"github.com/matzehuels/plotmap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	out        io.Writer
	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and the built-in
// settings. The config file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Plotmap explores a land-subdivision site plan",
		Long: `Plotmap is an interactive site-plan viewer for a land subdivision. It lists
parcels, exports the plan, renders snapshots of the map in any view state,
shows the map in the terminal and serves it to browsers.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/plotmap/config.toml)")

	root.AddCommand(c.parcelsCommand())
	root.AddCommand(c.parcelCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies the log level. --verbose
// wins over the configured level.
func (c *CLI) loadConfig(cmd *cobra.Command, _ []string) error {
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
	c.Config = cfg

	level := cfg.LogLevel()
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	vc := c.Config.ViewStack()
	r := pipeline.NewRunner(cch, nil, c.Logger)
	r.TTL = c.Config.Cache.TTL.Duration
	r.View = &vc
	return r, nil
}

// newCache selects the artifact cache: none, Redis when an address is
// configured, otherwise the file cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if addr := c.Config.Cache.RedisAddr; addr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: addr, Prefix: appName + ":"})
		if err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "addr", addr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	dir, err := c.Config.CacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}
