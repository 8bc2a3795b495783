package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLoginCmd(o *rootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the access token for checkout",
		Long: `Exchanges email and password for an access token. The password may also be
given in STOREFRONT_PASSWORD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("STOREFRONT_PASSWORD")
			}

			ctx := cmd.Context()
			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if err := a.Storefront.Login(ctx, email, password); err != nil {
				return o.fail(ctx, out, a, err)
			}
			return o.renderer.Message(out, a.Storefront.Page(ctx, "Login"), fmt.Sprintf("Logged in as %s.", email))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the access token and empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if err := a.Storefront.Logout(ctx); err != nil {
				return o.fail(ctx, out, a, err)
			}
			return o.renderer.Message(out, a.Storefront.Page(ctx, "Logout"), "Logged out.")
		},
	}
}
