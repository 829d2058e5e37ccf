package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/herobook/pkg/observability"
	"github.com/matzehuels/herobook/pkg/pipeline"
	"github.com/matzehuels/herobook/pkg/storage"
)

// renderOpts holds the flags for the render command. Zero values fall back
// to the configuration file.
type renderOpts struct {
	output      string
	workers     int
	trimGuides  bool
	noThumbnail bool
	fixedTime   string
	runnerFlags
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <request.json>",
		Short: "Render a request into book.pdf, cover.pdf and thumb.jpg",
		Long: `Render a request file into print-ready PDFs.

Files are written to {output}/{orderId}/. Missing or unreadable assets do not
fail the render; they are listed in the summary instead.`,
		Example: `  herobook example > emma.json
  herobook render emma.json -o ./out
  herobook render emma.json --assets ./assets --trim-guides`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: requestFileArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default storage.dir)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, fmt.Sprintf("concurrent page workers (default %d)", pipeline.DefaultWorkers))
	cmd.Flags().BoolVar(&opts.trimGuides, "trim-guides", false, "draw trim box guides for proofing")
	cmd.Flags().BoolVar(&opts.noThumbnail, "no-thumbnail", false, "skip thumb.jpg")
	cmd.Flags().StringVar(&opts.fixedTime, "time", "", "fixed RFC 3339 render time, for reproducible output")
	opts.runnerFlags.register(cmd)

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts renderOpts) error {
	ctx := commandContext(cmd)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	req, err := readRequest(input)
	if err != nil {
		return err
	}

	popts := renderOptions(cfg, req)
	if opts.workers > 0 {
		popts.Workers = opts.workers
	}
	popts.TrimGuides = popts.TrimGuides || opts.trimGuides
	popts.NoThumbnail = opts.noThumbnail
	if opts.fixedTime != "" {
		if popts.GeneratedAt, err = time.Parse(time.RFC3339, opts.fixedTime); err != nil {
			return fmt.Errorf("--time: %w", err)
		}
	}

	outDir := cfg.Storage.Dir
	if opts.output != "" {
		outDir = opts.output
	}
	out, err := storage.NewLocal(outDir)
	if err != nil {
		return err
	}

	runner, ch, err := c.newRunner(cfg, opts.runnerFlags)
	if err != nil {
		return err
	}
	defer ch.Close()

	spinner := newSpinnerWithContext(ctx, os.Stderr, "Rendering "+req.OrderID+"...")
	observability.SetRenderHooks(&stageHooks{spinner: spinner, logger: c.Logger})
	defer observability.Reset()

	prog := newProgress(c.Logger)
	spinner.Start()
	res, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	urls, err := out.Upload(ctx, req.OrderID, storage.Artifacts{Book: res.Book, Cover: res.Cover, Thumb: res.Thumbnail})
	if err != nil {
		spinner.StopWithError("Could not write output")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Rendered %s", StyleHighlight.Render(res.Metadata.Title)))
	prog.done("Rendered " + req.OrderID)

	printDetail("%s", formatStats(res.Stats))
	for _, u := range []string{urls.Book, urls.Cover, urls.Thumb} {
		if u != "" {
			printFile(u)
		}
	}
	if t := skipTable(res.Plans); t != "" {
		printWarning("Some assets were left off their pages")
		fmt.Println(t)
	}
	return nil
}
