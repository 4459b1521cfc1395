package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/casualjim/etrade/market"
)

// NewMarketCmd creates the market data command group.
func NewMarketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Quotes, symbol lookup, and option chains",
	}

	cmd.AddCommand(
		newMarketQuoteCmd(),
		newMarketLookupCmd(),
		newMarketChainsCmd(),
		newMarketExpireDatesCmd(),
	)

	return cmd
}

func newMarketQuoteCmd() *cobra.Command {
	var req market.QuotesRequest

	cmd := &cobra.Command{
		Use:   "quote <symbol> [symbol...]",
		Short: "Fetch quotes for one or more symbols",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			resp, err := market.New(a.Session).Quotes(cmd.Context(), args, req, a.Callback)
			if err != nil {
				return err
			}

			return a.Out.Result(resp, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SYMBOL\tLAST\tBID\tASK\tCHG%\tVOLUME")
				for _, q := range resp.QuoteData {
					if q.All == nil {
						fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\n", q.Product.Symbol)
						continue
					}
					fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%d\n",
						q.Product.Symbol, q.All.LastTrade, q.All.Bid, q.All.Ask,
						q.All.ChangeClosePercentage, q.All.TotalVolume)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				for _, m := range resp.MessageList.Message {
					fmt.Fprintf(w, "%s\n", m.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.DetailFlag, "detail", market.DetailAll,
		"Quote detail (ALL, FUNDAMENTAL, INTRADAY, OPTIONS, WEEK_52, MF_DETAIL)")
	cmd.Flags().BoolVar(&req.RequireEarningsDate, "earnings-date", false, "Include the next earnings date")
	cmd.Flags().BoolVar(&req.OverrideSymbolCount, "override-symbol-count", false, "Allow up to 50 symbols")

	return cmd
}

func newMarketLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <search>",
		Short: "Search for securities by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			results, err := market.New(a.Session).Lookup(cmd.Context(), args[0], a.Callback)
			if err != nil {
				return err
			}

			return a.Out.Result(results, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SYMBOL\tTYPE\tDESCRIPTION")
				for _, res := range results {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", res.Symbol, res.Type, res.Description)
				}
				return tw.Flush()
			})
		},
	}
}

func newMarketChainsCmd() *cobra.Command {
	var req market.ChainsRequest

	cmd := &cobra.Command{
		Use:   "chains <symbol>",
		Short: "Fetch the option chain for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			req.Symbol = args[0]

			resp, err := market.New(a.Session).OptionChains(cmd.Context(), req, a.Callback)
			if err != nil {
				return err
			}

			return a.Out.Result(resp, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "STRIKE\tCALL BID\tCALL ASK\tPUT BID\tPUT ASK")
				for _, pair := range resp.OptionPairs {
					strike := 0.0
					callBid, callAsk, putBid, putAsk := "-", "-", "-", "-"
					if pair.Call != nil {
						strike = pair.Call.StrikePrice
						callBid = fmt.Sprintf("%.2f", pair.Call.Bid)
						callAsk = fmt.Sprintf("%.2f", pair.Call.Ask)
					}
					if pair.Put != nil {
						strike = pair.Put.StrikePrice
						putBid = fmt.Sprintf("%.2f", pair.Put.Bid)
						putAsk = fmt.Sprintf("%.2f", pair.Put.Ask)
					}
					fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\t%s\n", strike, callBid, callAsk, putBid, putAsk)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&req.ExpiryYear, "year", 0, "Expiration year")
	cmd.Flags().IntVar(&req.ExpiryMonth, "month", 0, "Expiration month")
	cmd.Flags().IntVar(&req.ExpiryDay, "day", 0, "Expiration day")
	cmd.Flags().Float64Var(&req.StrikePriceNear, "near", 0, "Center strikes near this price")
	cmd.Flags().IntVar(&req.NoOfStrikes, "strikes", 0, "Number of strikes to return")
	cmd.Flags().BoolVar(&req.IncludeWeekly, "weekly", false, "Include weekly options")
	cmd.Flags().StringVar(&req.ChainType, "type", "", "CALL, PUT, or CALLPUT")

	return cmd
}

func newMarketExpireDatesCmd() *cobra.Command {
	var req market.ExpireDatesRequest

	cmd := &cobra.Command{
		Use:   "expiredates <symbol>",
		Short: "List option expiration dates for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			req.Symbol = args[0]

			dates, err := market.New(a.Session).OptionExpireDates(cmd.Context(), req, a.Callback)
			if err != nil {
				return err
			}

			return a.Out.Result(dates, func(w io.Writer) error {
				for _, d := range dates {
					fmt.Fprintf(w, "%04d-%02d-%02d\t%s\n", d.Year, d.Month, d.Day, d.ExpiryType)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.ExpiryType, "expiry-type", "",
		"Filter by cycle (DAILY, WEEKLY, MONTHLY, QUARTERLY, VIX, MONTHEND)")

	return cmd
}
