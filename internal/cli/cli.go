// Package cli implements the herobook command-line interface.
//
// # Commands
//
//   - render: render a request file into book.pdf, cover.pdf and thumb.jpg
//   - plan: print the composed draw plans, or browse them with -i
//   - validate: check a request file without rendering
//   - example: print a complete example request
//   - serve: run the HTTP service
//   - status: read the order status store
//   - cache: manage the fetched-asset cache
//
// Every command reads the same configuration as the service (--config,
// ./herobook.toml, HEROBOOK_* variables). All commands support --verbose
// (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/herobook/pkg/assets"
	"github.com/matzehuels/herobook/pkg/book"
	"github.com/matzehuels/herobook/pkg/buildinfo"
	"github.com/matzehuels/herobook/pkg/cache"
	"github.com/matzehuels/herobook/pkg/config"
	"github.com/matzehuels/herobook/pkg/pipeline"
)

const appName = "herobook"

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

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Herobook renders personalized picture books to print-ready PDFs",
		Long:         `Herobook composes a personalized children's picture book from a manuscript and a child profile, and renders the interior and cover as print-ready PDFs.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./herobook.toml if present)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.exampleCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the layered configuration.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", c.configPath, "status", cfg.Status.Backend, "cache", cfg.Cache.Backend)
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// runnerFlags are the asset flags shared by render, plan and serve.
type runnerFlags struct {
	assetsDir string
	noCache   bool
}

func (f *runnerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.assetsDir, "assets", "", "local asset directory (overrides render.assets_dir)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the asset cache")
}

// newRunner creates a pipeline runner whose fetcher follows cfg. The
// returned cache must be closed by the caller.
func (c *CLI) newRunner(cfg *config.Config, flags runnerFlags) (*pipeline.Runner, cache.Cache, error) {
	if flags.assetsDir != "" {
		cfg.Render.AssetsDir = flags.assetsDir
	}
	copts := cfg.CacheOptions()
	if flags.noCache {
		copts.Backend = cache.BackendNone
	}
	ch, err := cache.New(copts)
	if err != nil {
		return nil, nil, err
	}
	fetcher := assets.NewFetcher(cfg.FetcherOptions(ch)...)
	runner, err := pipeline.NewRunner(fetcher, c.Logger)
	if err != nil {
		ch.Close()
		return nil, nil, err
	}
	return runner, ch, nil
}

// renderOptions builds pipeline options for req from the [render] section.
func renderOptions(cfg *config.Config, req *book.Request) pipeline.Options {
	return pipeline.Options{
		Request:        req,
		Workers:        cfg.Render.Workers,
		TrimGuides:     cfg.Render.TrimGuides,
		TextSize:       cfg.Render.TextSize,
		CoverTitleSize: cfg.Render.CoverTitleSize,
	}
}

// readRequest decodes a request file; "-" reads stdin.
func readRequest(path string) (*book.Request, error) {
	if path == "-" {
		return book.Decode(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return book.Decode(f)
}

// commandContext returns cmd's context or a background context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
