package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/casualjim/etrade/transactions"
)

// NewTransactionsCmd creates the transactions command group.
func NewTransactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List account transactions",
	}

	cmd.AddCommand(
		newTransactionsListCmd(),
		newTransactionsShowCmd(),
	)

	return cmd
}

func newTransactionsListCmd() *cobra.Command {
	var req transactions.ListRequest

	cmd := &cobra.Command{
		Use:   "list <account-id-key>",
		Short: "List transactions for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			resp, err := transactions.New(a.Session).List(cmd.Context(), args[0], req, a.Callback)
			if err != nil {
				return err
			}

			return a.Out.Result(resp, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDATE\tAMOUNT\tDESCRIPTION")
				for _, txn := range resp.Transaction {
					date := time.UnixMilli(txn.TransactionDate).Format("2006-01-02")
					fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\n", txn.TransactionID, date, txn.Amount, txn.Description)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				if resp.MoreTransactions {
					fmt.Fprintf(w, "more results: --marker %s\n", resp.PageMarker)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.StartDate, "from", "", "Start date (MMDDYYYY)")
	cmd.Flags().StringVar(&req.EndDate, "to", "", "End date (MMDDYYYY)")
	cmd.Flags().StringVar(&req.SortOrder, "sort-order", "", "ASC or DESC")
	cmd.Flags().StringVar(&req.Marker, "marker", "", "Pagination marker from a previous page")
	cmd.Flags().IntVar(&req.Count, "count", 0, "Transactions per page")

	return cmd
}

func newTransactionsShowCmd() *cobra.Command {
	var storeID string

	cmd := &cobra.Command{
		Use:   "show <account-id-key> <transaction-id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			txn, err := transactions.New(a.Session).Detail(cmd.Context(), args[0], args[1], storeID, a.Callback)
			if err != nil {
				return err
			}

			return a.Out.Result(txn, func(w io.Writer) error {
				fmt.Fprintf(w, "transaction: %d\n", txn.TransactionID)
				fmt.Fprintf(w, "date:        %s\n", time.UnixMilli(txn.TransactionDate).Format("2006-01-02"))
				fmt.Fprintf(w, "amount:      %.2f\n", txn.Amount)
				fmt.Fprintf(w, "description: %s\n", txn.Description)
				if txn.Brokerage != nil {
					fmt.Fprintf(w, "type:        %s\n", txn.Brokerage.TransactionType)
					fmt.Fprintf(w, "symbol:      %s\n", txn.Brokerage.Product.Symbol)
					fmt.Fprintf(w, "quantity:    %.2f @ %.2f\n", txn.Brokerage.Quantity, txn.Brokerage.Price)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&storeID, "store-id", "", "Store ID for the detail lookup")

	return cmd
}
