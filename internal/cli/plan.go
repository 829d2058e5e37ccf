package cli

import (
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func (c *CLI) planCommand() *cobra.Command {
	var (
		interactive bool
		page        string
		flags       runnerFlags
	)

	cmd := &cobra.Command{
		Use:   "plan <request.json>",
		Short: "Print the draw plan of every page",
		Long: `Compose every page without building PDFs and print the draw plans as JSON.

With -i, browse the plans page by page in the terminal.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: requestFileArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			req, err := readRequest(args[0])
			if err != nil {
				return err
			}
			runner, ch, err := c.newRunner(cfg, flags)
			if err != nil {
				return err
			}
			defer ch.Close()

			plans, err := runner.Plan(ctx, renderOptions(cfg, req))
			if err != nil {
				return err
			}

			if interactive {
				_, err := tea.NewProgram(newPlanBrowser(req.OrderID, plans), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
				return err
			}

			var out any = plans
			if page != "" {
				out = nil
				for _, p := range plans {
					if p.PageID == page {
						out = p
					}
				}
				if out == nil {
					return fmt.Errorf("no page %q (pages are p1..p14, dedication, keepsake, cover)", page)
				}
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse plans interactively")
	cmd.Flags().StringVarP(&page, "page", "p", "", "print only this page")
	flags.register(cmd)
	return cmd
}
