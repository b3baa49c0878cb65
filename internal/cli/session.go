package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(r *runner) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in with your CRM account. The session cookie is stored in the
session file so later commands and the console reuse it.

When --password is omitted the password is read from the first line of stdin.`,
		Args: cobra.NoArgs,
		RunE: r.oneShot(func(ctx context.Context, cmd *cobra.Command, _ []string, app *App) error {
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			user, err := app.Auth.Login(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.DisplayName())
			if !user.IsTelecaller() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: account role is %q, not %q\n", user.Role, "telecaller")
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored cookie",
		Args:  cobra.NoArgs,
		RunE: r.oneShot(func(ctx context.Context, cmd *cobra.Command, _ []string, app *App) error {
			if err := app.Auth.Logout(ctx); err != nil {
				app.Log.Warn("logout request failed", "error", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		}),
	}
}

func newWhoamiCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: r.oneShot(func(ctx context.Context, cmd *cobra.Command, _ []string, app *App) error {
			if err := requireSession(app); err != nil {
				return err
			}
			user, err := app.Auth.Me(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", user.DisplayName(), user.Email, user.Role)
			return nil
		}),
	}
}
