package cli

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/herobook/pkg/book"
	"github.com/matzehuels/herobook/pkg/errors"
)

func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "validate <request.json>",
		Short:             "Check a request file without rendering",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: requestFileArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(args[0])
			if err == nil {
				req, err = book.Validate(req)
			}
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}
			g, err := req.Spec.Geometry()
			if err != nil {
				return err
			}
			printSuccess("%s is valid", args[0])
			printKeyValue("Order", req.OrderID)
			printKeyValue("Title", req.Manuscript.Title)
			printKeyValue("Child", req.Child.Name+", "+strconv.Itoa(req.Child.Age))
			printKeyValue("Trim", req.Spec.Trim+" + "+req.Spec.Bleed+" bleed")
			printKeyValue("Page size", formatPoints(g.PageWidth(), g.PageHeight()))
			printKeyValue("Output", req.Spec.ColorSpace+" "+req.Spec.Binding)
			printNextStep("Render it", "herobook render "+args[0])
			return nil
		},
	}
}

func (c *CLI) exampleCommand() *cobra.Command {
	var orderID string
	cmd := &cobra.Command{
		Use:   "example [child-name]",
		Short: "Print a complete example request",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "Emma"
			if len(args) == 1 {
				name = args[0]
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(book.Example(orderID, name))
		},
	}
	cmd.Flags().StringVar(&orderID, "order", "ORDER-EXAMPLE", "order id")
	return cmd
}
