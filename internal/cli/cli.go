package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sensala/viewer/pkg/buildinfo"
	"github.com/sensala/viewer/pkg/cache"
	"github.com/sensala/viewer/pkg/config"
	"github.com/sensala/viewer/pkg/integrations/sensala"
	"github.com/sensala/viewer/pkg/pipeline"
	"github.com/sensala/viewer/pkg/render/nodelink"
	"github.com/sensala/viewer/pkg/session"
	"github.com/sensala/viewer/pkg/surface"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sensala"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// EngineFactory creates a layout engine and returns a function that releases it.
type EngineFactory func(ctx context.Context) (pipeline.LayoutEngine, func() error, error)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// NewEngine creates the layout engine. Defaults to in-process Graphviz.
	NewEngine EngineFactory

	global globalOpts
}

// globalOpts are the persistent flags shared by every command. Zero values
// leave the loaded configuration untouched.
type globalOpts struct {
	configPath string
	endpoint   string
	cacheKind  string
	noCache    bool
	refresh    bool
	timeout    time.Duration
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		NewEngine: graphvizEngine,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Sensala draws the parse tree and meaning of a discourse",
		Long:         `Sensala sends a discourse to a Sensala interpretation service and draws the two trees it returns: the syntactic parse tree and the semantic term tree.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVarP(&c.global.configPath, "config", "c", "", "config file (TOML)")
	pf.StringVar(&c.global.endpoint, "endpoint", "", "interpretation service URL (default "+sensala.DefaultEndpoint+")")
	pf.StringVar(&c.global.cacheKind, "cache", "", "cache backend: memory, file, redis, none")
	pf.BoolVar(&c.global.noCache, "no-cache", false, "disable caching")
	pf.BoolVar(&c.global.refresh, "refresh", false, "bypass cached responses and layouts")
	pf.DurationVar(&c.global.timeout, "timeout", 0, "timeout for one interpretation (default 30s)")

	root.AddCommand(c.interpretCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.replCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(versionCommand())

	return root
}

// versionCommand prints the build information.
func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(out, "%s %s\n", appName, buildinfo.String())
		},
	}
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the configuration and applies the global flags.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.global.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if c.global.endpoint != "" {
		cfg.Endpoint = c.global.endpoint
	}
	if c.global.cacheKind != "" {
		cfg.Cache.Backend = c.global.cacheKind
	}
	if c.global.noCache {
		cfg.Cache.Backend = cache.BackendNone
	}
	if c.global.timeout > 0 {
		cfg.Timeout.Duration = c.global.timeout
	}
	if cfg.Cache.Backend == cache.BackendFile && cfg.Cache.Dir == "" {
		if dir, err := cacheDir(); err == nil {
			cfg.Cache.Dir = dir
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// =============================================================================
// App - Wired Session
// =============================================================================

// app is a fully wired interpretation session.
type app struct {
	cfg      config.Config
	cache    cache.Cache
	client   *sensala.Client
	runner   *pipeline.Runner
	surfaces *surface.Set
	session  *session.Session

	closeEngine func() error
}

// newApp wires cache, client, layout engine and session from cfg.
func (c *CLI) newApp(ctx context.Context, cfg config.Config, detailed bool) (*app, error) {
	store, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		return nil, err
	}

	engine, closeEngine, err := c.NewEngine(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}

	logger := loggerFromContext(ctx)
	client := sensala.NewClient(store, cfg.Endpoint, cfg.Cache.TTL.Duration)
	runner := pipeline.NewRunner(engine, store, nil, logger)
	surfaces := surface.NewSet(cfg.SurfaceSize())
	sess := session.New(client, runner, surfaces, session.Options{
		Timeout:  cfg.Timeout.Duration,
		Refresh:  c.global.refresh,
		RankDir:  cfg.RankDir,
		Detailed: detailed,
	}, logger)

	logger.Debug("configured", "config", cfg.String())
	return &app{
		cfg:         cfg,
		cache:       store,
		client:      client,
		runner:      runner,
		surfaces:    surfaces,
		session:     sess,
		closeEngine: closeEngine,
	}, nil
}

// Close waits for background interpretations and releases resources.
func (a *app) Close() error {
	a.session.Wait()
	err := a.closeEngine()
	if cerr := a.runner.Close(); err == nil {
		err = cerr
	}
	return err
}

func graphvizEngine(ctx context.Context) (pipeline.LayoutEngine, func() error, error) {
	e, err := nodelink.NewEngine(ctx)
	if err != nil {
		return nil, nil, err
	}
	return e, e.Close, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/sensala/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
