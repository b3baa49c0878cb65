package cli

import (
	"context"
	"errors"

	authservice "telecrm/internal/auth/service"
	"telecrm/internal/console"
	"telecrm/platform/apperr"

	"github.com/spf13/cobra"
)

// Loader builds the App for one command run. interactive is true for the
// console.
type Loader func(ctx context.Context, interactive bool) (*App, error)

// LoginHint is appended to errors caused by a missing or expired session.
const LoginHint = `Run "telecaller login" to sign in.`

type runner struct {
	load Loader
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the console.
func NewRootCommand(load Loader) *cobra.Command {
	r := &runner{load: load}

	root := &cobra.Command{
		Use:   "telecaller",
		Short: "Work your calling queue from the terminal",
		Long: `telecaller is the console a telecaller uses to work assigned leads:
call the current lead, record the outcome, and manage follow-ups.

Running it without a command opens the interactive console.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          r.runConsole,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "console",
			Short: "Open the interactive console (same as default)",
			Args:  cobra.NoArgs,
			RunE:  r.runConsole,
		},
		newLoginCmd(r),
		newLogoutCmd(r),
		newWhoamiCmd(r),
		newQueueCmd(r),
		newCountsCmd(r),
		newCloseCmd(r),
		newRenameCmd(r),
		newPreviousCmd(r),
		newScriptCmd(r),
		newPunchCmd(r),
	)
	return root
}

// Execute runs the command line with the environment configuration.
func Execute(ctx context.Context) error {
	return NewRootCommand(Load).ExecuteContext(ctx)
}

// Message returns the text to show for err: the server or validation
// message when there is one, the full error otherwise.
func Message(err error) string {
	return apperr.MessageOr(err, err.Error())
}

func (r *runner) runConsole(cmd *cobra.Command, _ []string) (err error) {
	app, err := r.load(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); err == nil {
			err = cerr
		}
	}()

	return console.Run(cmd.Context(), app.Deps(), app.Bus)
}

type action func(ctx context.Context, cmd *cobra.Command, args []string, app *App) error

// oneShot wraps a non interactive command: it wires an App, runs fn and
// turns a session expiry seen during the run into a login hint.
func (r *runner) oneShot(fn action) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		app, err := r.load(ctx, false)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := app.Close(); err == nil {
				err = cerr
			}
		}()

		err = fn(ctx, cmd, args, app)
		app.Bus.Wait()
		if app.SessionExpired() {
			return sessionError(err)
		}
		return err
	}
}

func sessionError(cause error) error {
	if cause == nil {
		cause = errors.New("unauthorized")
	}
	return apperr.Wrap(apperr.KindUnauthorized, authservice.MsgSessionExpired+" "+LoginHint, cause)
}

// requireSession fails fast when no usable session cookie is stored.
func requireSession(app *App) error {
	if app.Auth.Expired() {
		_ = app.Jar.Clear()
		return sessionError(nil)
	}
	if !app.Auth.HasSession() {
		return apperr.Unauthorized(authservice.MsgNotAuthenticated + ". " + LoginHint)
	}
	return nil
}
