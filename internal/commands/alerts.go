package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/casualjim/etrade/alerts"
)

// NewAlertsCmd creates the alerts command group.
func NewAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List, read, and delete alerts",
	}

	cmd.AddCommand(
		newAlertsListCmd(),
		newAlertsShowCmd(),
		newAlertsDeleteCmd(),
	)

	return cmd
}

func newAlertsListCmd() *cobra.Command {
	var req alerts.ListRequest

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			resp, err := alerts.New(a.Session).List(cmd.Context(), req, a.Callback)
			if err != nil {
				return err
			}

			return a.Out.Result(resp, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tSUBJECT")
				for _, alert := range resp.Alerts {
					created := time.Unix(alert.CreateTime, 0).Format("2006-01-02 15:04")
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", alert.ID, created, alert.Status, alert.Subject)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&req.Count, "count", 0, "Alerts per page")
	cmd.Flags().StringVar(&req.Category, "category", "", "STOCK or ACCOUNT")
	cmd.Flags().StringVar(&req.Status, "status", "", "READ, UNREAD, or DELETED")
	cmd.Flags().StringVar(&req.Search, "search", "", "Subject substring filter")

	return cmd
}

func newAlertsShowCmd() *cobra.Command {
	var html bool

	cmd := &cobra.Command{
		Use:   "show <alert-id>",
		Short: "Show one alert's full text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			detail, err := alerts.New(a.Session).Detail(cmd.Context(), args[0], html, a.Callback)
			if err != nil {
				return err
			}

			return a.Out.Result(detail, func(w io.Writer) error {
				fmt.Fprintf(w, "subject: %s\n", detail.Subject)
				fmt.Fprintf(w, "created: %s\n", time.Unix(detail.CreateTime, 0).Format(time.RFC1123))
				fmt.Fprintf(w, "\n%s\n", detail.MsgText)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&html, "html", false, "Keep HTML markup in the message body")

	return cmd
}

func newAlertsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <alert-id>",
		Short: "Delete an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			resp, err := alerts.New(a.Session).Delete(cmd.Context(), args[0], a.Callback)
			if err != nil {
				return err
			}

			return a.Out.Result(resp, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "deleted alert %s\n", args[0])
				return err
			})
		},
	}
}
