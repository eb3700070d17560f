package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meetwhen/meetwhen/internal/google"
)

func newAuthCmd() *cobra.Command {
	var (
		account string
		code    string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize a Google account for calendar access",
		Long: `Authorize meetwhen to read free/busy data from a Google account.

Without --code, prints the authorization URL to visit. After signing in
and granting calendar access, run the command again with --code to
exchange the authorization code and store the token.

OAuth client credentials are taken from the GOOGLE_OAUTH_CLIENT_ID,
GOOGLE_OAUTH_CLIENT_SECRET and GOOGLE_OAUTH_REDIRECT_URL environment
variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if code == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Visit this URL to authorize account %q:\n\n  %s\n\nThen run: meetwhen auth --account %s --code <authorization-code>\n",
					account, google.GetAuthURLForAccount(account), account)
				return nil
			}

			if err := google.SaveTokenForAccount(cmd.Context(), account, code); err != nil {
				return fmt.Errorf("failed to save token for account %s: %w", account, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved for account %q.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to authorize")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code obtained from the auth URL")

	return cmd
}
