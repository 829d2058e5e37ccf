package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/herobook/pkg/status"
)

func (c *CLI) statusCommand() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "status [orderId]",
		Short: "Show order render status",
		Long:  `Show the most recent renders, or one order's status, from the configured status store.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := status.New(ctx, cfg.StatusOptions())
			if err != nil {
				return err
			}
			defer store.Close()

			var out any
			if len(args) == 1 {
				rec, err := store.Get(ctx, args[0])
				if stderrors.Is(err, status.ErrNotFound) {
					return fmt.Errorf("no status for order %s", args[0])
				}
				if err != nil {
					return err
				}
				out = rec
				if !asJSON {
					fmt.Println(statusTable([]*status.Record{rec}))
					return nil
				}
			} else {
				recs, err := store.List(ctx, limit)
				if err != nil {
					return err
				}
				out = recs
				if !asJSON {
					if len(recs) == 0 {
						printInfo("No orders recorded in the %s store", cfg.Status.Backend)
						return nil
					}
					fmt.Println(statusTable(recs))
					return nil
				}
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum orders to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
