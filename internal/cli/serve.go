package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/herobook/pkg/server"
	"github.com/matzehuels/herobook/pkg/status"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		flags runnerFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render service",
		Long: `Run the HTTP render service.

Routes: GET /health, POST /render, GET /orders, GET /orders/{orderId} and
GET /out/{orderId}/{file}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			runner, ch, err := c.newRunner(cfg, flags)
			if err != nil {
				return err
			}
			defer ch.Close()

			store, err := status.New(ctx, cfg.StatusOptions())
			if err != nil {
				return err
			}
			defer store.Close()

			out, err := cfg.NewStorage()
			if err != nil {
				return err
			}
			fallback, err := cfg.NewFallbackStorage()
			if err != nil {
				return err
			}

			srv := server.New(server.Config{
				Runner:   runner,
				Status:   store,
				Output:   out,
				Fallback: fallback,
				Defaults: renderOptions(cfg, nil),
				Logger:   c.Logger,
			})
			printInfo("Serving on %s", StyleLink.Render(cfg.Server.BaseURL))
			printDetail("output %s · status %s · cache %s", out.Dir(), cfg.Status.Backend, cfg.Cache.Backend)
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	flags.register(cmd)
	return cmd
}
