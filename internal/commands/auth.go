package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewAuthCmd creates the auth command group.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long:  "Manage E*TRADE credentials: seed consumer keys, run the OAuth flow, and inspect or clear stored tokens.",
	}

	cmd.AddCommand(
		newAuthInitCmd(),
		newAuthLoginCmd(),
		newAuthStatusCmd(),
		newAuthLogoutCmd(),
	)

	return cmd
}

func newAuthInitCmd() *cobra.Command {
	var key, secret string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Store consumer credentials",
		Long:  "Store the consumer key and secret for the selected mode. Sandbox and live credentials are kept separately.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			if err := a.Session.Initialize(key, secret); err != nil {
				return err
			}

			return a.Out.Result(map[string]string{
				"status": "initialized",
				"mode":   a.Session.Mode().String(),
			}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "stored consumer credentials for %s\n", a.Session.Mode())
				return err
			})
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Consumer key")
	cmd.Flags().StringVar(&secret, "secret", "", "Consumer secret")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Run the OAuth authorization flow",
		Long:  "Obtain an access token, prompting for the verification PIN when the interactive step is required.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			if err := a.Session.Authenticate(cmd.Context(), a.Callback); err != nil {
				return err
			}

			return a.Out.Result(map[string]string{
				"status": "authenticated",
				"mode":   a.Session.Mode().String(),
			}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "authenticated")
				return err
			})
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show stored credential state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			st, err := a.Session.CredentialStatus()
			if err != nil {
				return err
			}

			return a.Out.Result(st, func(w io.Writer) error {
				fmt.Fprintf(w, "mode:          %s\n", a.Session.Mode())
				fmt.Fprintf(w, "consumer:      %s\n", yesno(st.Consumer))
				reqLine := yesno(st.RequestToken)
				if st.RequestToken && st.RequestTokenDate != "" {
					reqLine += " (issued " + st.RequestTokenDate + ")"
				}
				fmt.Fprintf(w, "request token: %s\n", reqLine)
				fmt.Fprintf(w, "access token:  %s\n", yesno(st.AccessToken))
				return nil
			})
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored tokens",
		Long:  "Remove the cached request and access tokens. Consumer credentials are kept.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}

			if err := a.Session.Invalidate(); err != nil {
				return err
			}

			return a.Out.Result(map[string]string{
				"status": "logged_out",
			}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "logged out")
				return err
			})
		},
	}
}

func yesno(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
