package commands

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/casualjim/etrade/orders"
)

// NewOrdersCmd creates the orders command group.
func NewOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List and cancel orders",
	}

	cmd.AddCommand(
		newOrdersListCmd(),
		newOrdersCancelCmd(),
	)

	return cmd
}

func newOrdersListCmd() *cobra.Command {
	var req orders.ListRequest

	cmd := &cobra.Command{
		Use:   "list <account-id-key>",
		Short: "List orders for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			resp, err := orders.New(a.Session).List(cmd.Context(), args[0], req, a.Callback)
			if err != nil {
				return err
			}

			return a.Out.Result(resp, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ORDER ID\tSTATUS\tTYPE\tSYMBOL\tACTION\tQTY\tFILLED\tLIMIT")
				for _, order := range resp.Order {
					for _, d := range order.OrderDetail {
						for _, inst := range d.Instrument {
							fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.0f\t%.0f\t%.2f\n",
								order.OrderID, d.Status, d.PriceType,
								inst.Product.Symbol, inst.OrderAction,
								inst.OrderedQuantity, inst.FilledQuantity, d.LimitPrice)
						}
					}
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				if resp.Marker != "" {
					fmt.Fprintf(w, "more results: --marker %s\n", resp.Marker)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Status, "status", "", "Filter by status (OPEN, EXECUTED, CANCELLED, ...)")
	cmd.Flags().IntVar(&req.Count, "count", 0, "Orders per page")
	cmd.Flags().StringVar(&req.Marker, "marker", "", "Pagination marker from a previous page")
	cmd.Flags().StringVar(&req.FromDate, "from", "", "Start date (MMDDYYYY)")
	cmd.Flags().StringVar(&req.ToDate, "to", "", "End date (MMDDYYYY)")
	cmd.Flags().StringSliceVar(&req.Symbol, "symbol", nil, "Filter by symbol (repeatable)")

	return cmd
}

func newOrdersCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <account-id-key> <order-id>",
		Short: "Cancel an open order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			orderID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[1])
			}

			resp, err := orders.New(a.Session).Cancel(cmd.Context(), args[0],
				orders.CancelRequest{OrderID: orderID}, a.Callback)
			if err != nil {
				return err
			}

			return a.Out.Result(resp, func(w io.Writer) error {
				fmt.Fprintf(w, "cancellation requested for order %d\n", resp.OrderID)
				for _, m := range resp.Messages.Message {
					fmt.Fprintf(w, "  %s\n", m.Description)
				}
				return nil
			})
		},
	}
}
