package cli

import (
	"context"
	"fmt"
	"strings"

	"telecrm/internal/attendance"
	"telecrm/platform/apperr"

	"github.com/spf13/cobra"
)

func newScriptCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "script",
		Short: "Print the active calling script",
		Args:  cobra.NoArgs,
		RunE: r.oneShot(func(ctx context.Context, cmd *cobra.Command, _ []string, app *App) error {
			if err := requireSession(app); err != nil {
				return err
			}
			script, err := app.Scripts.Active(ctx)
			if err != nil {
				return err
			}
			if script.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), "No active script")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", script.Title, script.Body)
			return nil
		}),
	}
}

func newPunchCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "punch [in|out]",
		Short: "Show today's attendance or punch in and out",
		Long: `Without an argument, show today's attendance.
With "in" or "out", record the punch for today.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(attendance.ActionIn), string(attendance.ActionOut)},
		RunE: r.oneShot(func(ctx context.Context, cmd *cobra.Command, args []string, app *App) error {
			if err := requireSession(app); err != nil {
				return err
			}

			var (
				day attendance.Day
				err error
			)
			if len(args) == 0 {
				day, err = app.Attendance.Today(ctx)
			} else {
				action := attendance.Action(strings.ToLower(args[0]))
				if action != attendance.ActionIn && action != attendance.ActionOut {
					return apperr.Validation(fmt.Sprintf("unknown punch %q, use in or out", args[0]))
				}
				day, err = app.Attendance.Punch(ctx, action)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", day.Date, day.Status())
			if day.PunchIn != nil {
				fmt.Fprintf(out, "  in   %s\n", day.PunchIn.Local().Format("15:04"))
			}
			if day.PunchOut != nil {
				fmt.Fprintf(out, "  out  %s\n", day.PunchOut.Local().Format("15:04"))
			}
			return nil
		}),
	}
}
