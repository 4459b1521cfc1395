package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/casualjim/etrade/accounts"
)

// NewAccountsCmd creates the accounts command group.
func NewAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts, balances, and portfolios",
	}

	cmd.AddCommand(
		newAccountsListCmd(),
		newAccountsBalanceCmd(),
		newAccountsPortfolioCmd(),
	)

	return cmd
}

func newAccountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List brokerage accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			accts, err := accounts.New(a.Session).List(cmd.Context(), a.Callback)
			if err != nil {
				return err
			}

			return a.Out.Result(accts, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ACCOUNT ID\tKEY\tNAME\tTYPE\tSTATUS")
				for _, acct := range accts {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						acct.AccountID, acct.AccountIDKey, acct.AccountName, acct.AccountType, acct.AccountStatus)
				}
				return tw.Flush()
			})
		},
	}
}

func newAccountsBalanceCmd() *cobra.Command {
	var realTimeNAV bool

	cmd := &cobra.Command{
		Use:   "balance <account-id-key>",
		Short: "Show an account's balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			bal, err := accounts.New(a.Session).Balance(cmd.Context(), args[0],
				accounts.BalanceRequest{RealTimeNAV: realTimeNAV}, a.Callback)
			if err != nil {
				return err
			}

			return a.Out.Result(bal, func(w io.Writer) error {
				fmt.Fprintf(w, "account:           %s (%s)\n", bal.AccountID, bal.AccountType)
				fmt.Fprintf(w, "net cash:          %.2f\n", bal.Computed.NetCash)
				fmt.Fprintf(w, "cash available:    %.2f\n", bal.Computed.CashAvailableForInvestment)
				fmt.Fprintf(w, "total value:       %.2f\n", bal.Computed.RealTimeValues.TotalAccountValue)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&realTimeNAV, "real-time", false, "Request real-time balance values")

	return cmd
}

func newAccountsPortfolioCmd() *cobra.Command {
	var req accounts.PortfolioRequest

	cmd := &cobra.Command{
		Use:   "portfolio <account-id-key>",
		Short: "Show an account's positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			p, err := accounts.New(a.Session).Portfolio(cmd.Context(), args[0], req, a.Callback)
			if err != nil {
				return err
			}

			return a.Out.Result(p, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SYMBOL\tQTY\tPAID\tLAST\tVALUE\tGAIN")
				for _, acct := range p.AccountPortfolio {
					for _, pos := range acct.Position {
						fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
							pos.Product.Symbol, pos.Quantity, pos.PricePaid, pos.Price, pos.MarketValue, pos.TotalGain)
					}
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				if p.Totals != nil {
					fmt.Fprintf(w, "total market value: %.2f (today %+.2f)\n",
						p.Totals.TotalMarketValue, p.Totals.TodaysGainLoss)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&req.Count, "count", 0, "Positions per page")
	cmd.Flags().StringVar(&req.SortBy, "sort-by", "", "Sort column (e.g. SYMBOL, DAYS_GAIN)")
	cmd.Flags().StringVar(&req.SortOrder, "sort-order", "", "ASC or DESC")
	cmd.Flags().StringVar(&req.View, "view", "", "View: PERFORMANCE, FUNDAMENTAL, OPTIONSWATCH, QUICK, COMPLETE")
	cmd.Flags().BoolVar(&req.TotalsRequired, "totals", false, "Include portfolio totals")
	cmd.Flags().BoolVar(&req.LotsRequired, "lots", false, "Include position lots")

	return cmd
}
