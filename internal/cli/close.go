package cli

import (
	"context"
	"fmt"
	"strings"

	callsdomain "telecrm/internal/calls/domain"
	"telecrm/internal/calls/presets"
	leadsdomain "telecrm/internal/leads/domain"
	"telecrm/platform/apperr"

	"github.com/spf13/cobra"
)

type closeFlags struct {
	outcome         string
	interested      bool
	converted       bool
	questions       string
	questionPresets []int
	remark          string
	remarkPresets   []int
	followUp        string
}

func newCloseCmd(r *runner) *cobra.Command {
	var f closeFlags

	cmd := &cobra.Command{
		Use:   "close LEAD_ID",
		Short: "Record the outcome of a call",
		Long: `Record the outcome of a call and move on to the next lead.

  not connected:             --outcome not_connected --follow-up 2026-01-31
  connected and converted:   --outcome connected --interested --converted
  connected, not converted:  --outcome connected --interested=false --converted=false \
                             --remark "Will think and revert" --follow-up 2026-01-31

Preset phrases are added as bullet lines by their number in "telecaller close presets".`,
		Args: cobra.ExactArgs(1),
		RunE: r.oneShot(func(ctx context.Context, cmd *cobra.Command, args []string, app *App) error {
			if err := requireSession(app); err != nil {
				return err
			}

			sess := app.Calls.Begin(leadsdomain.Lead{ID: args[0]})
			if err := sess.Edit(func(w *callsdomain.Wizard) error {
				return f.fill(w, cmd, app.Presets)
			}); err != nil {
				sess.Cancel()
				return err
			}
			if err := sess.Submit(ctx); err != nil {
				sess.Cancel()
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Call closed for lead %s\n", args[0])
			return nil
		}),
	}

	cmd.Flags().StringVarP(&f.outcome, "outcome", "o", "", "connected or not_connected")
	cmd.Flags().BoolVar(&f.interested, "interested", false, "Customer interested (connected calls)")
	cmd.Flags().BoolVar(&f.converted, "converted", false, "Customer converted (connected calls)")
	cmd.Flags().StringVarP(&f.questions, "questions", "q", "", "Questions the customer asked")
	cmd.Flags().IntSliceVar(&f.questionPresets, "question-preset", nil, "Add preset question phrases by number")
	cmd.Flags().StringVarP(&f.remark, "remark", "m", "", "Reason or message for follow-up")
	cmd.Flags().IntSliceVar(&f.remarkPresets, "remark-preset", nil, "Add preset remark phrases by number")
	cmd.Flags().StringVarP(&f.followUp, "follow-up", "d", "", "Follow-up date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("outcome")

	cmd.AddCommand(&cobra.Command{
		Use:   "presets",
		Short: "List the preset phrases",
		Args:  cobra.NoArgs,
		RunE: r.oneShot(func(_ context.Context, cmd *cobra.Command, _ []string, app *App) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Questions")
			for i, p := range app.Presets.Questions {
				fmt.Fprintf(out, "  %2d  %s\n", i+1, p)
			}
			fmt.Fprintln(out, "Remarks")
			for i, p := range app.Presets.Remarks {
				fmt.Fprintf(out, "  %2d  %s\n", i+1, p)
			}
			return nil
		}),
	})
	return cmd
}

// fill walks the wizard the way the console form does: outcome first, then
// the connected details, then the follow-up reason when the call did not convert.
func (f *closeFlags) fill(w *callsdomain.Wizard, cmd *cobra.Command, phrases presets.Presets) error {
	outcome, err := parseOutcome(f.outcome)
	if err != nil {
		return err
	}
	if err := w.SetOutcome(outcome); err != nil {
		return err
	}
	if outcome == callsdomain.OutcomeNotConnected {
		return w.SetFollowUpDate(f.followUp)
	}

	if err := w.Next(); err != nil {
		return err
	}
	if cmd.Flags().Changed("interested") {
		if err := w.SetInterested(callsdomain.AnswerOf(f.interested)); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("converted") {
		if err := w.SetConverted(callsdomain.AnswerOf(f.converted)); err != nil {
			return err
		}
	}
	if err := w.SetQuestionsAsked(f.questions); err != nil {
		return err
	}
	for _, n := range f.questionPresets {
		phrase, err := pick(phrases.Questions, n)
		if err != nil {
			return err
		}
		if err := w.AppendQuestion(phrase); err != nil {
			return err
		}
	}
	if w.Draft().Path() != callsdomain.PathFollowUp {
		return nil
	}

	if err := w.Next(); err != nil {
		return err
	}
	if err := w.SetRemark(f.remark); err != nil {
		return err
	}
	for _, n := range f.remarkPresets {
		phrase, err := pick(phrases.Remarks, n)
		if err != nil {
			return err
		}
		if err := w.AppendRemark(phrase); err != nil {
			return err
		}
	}
	return w.SetFollowUpDate(f.followUp)
}

func parseOutcome(raw string) (callsdomain.Outcome, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_")) {
	case "connected", "yes":
		return callsdomain.OutcomeConnected, nil
	case "not_connected", "no":
		return callsdomain.OutcomeNotConnected, nil
	default:
		return callsdomain.OutcomeUnset, apperr.Validation(callsdomain.MsgSelectOutcome)
	}
}

func pick(phrases []string, n int) (string, error) {
	if n < 1 || n > len(phrases) {
		return "", apperr.Validation(fmt.Sprintf("no preset number %d", n))
	}
	return phrases[n-1], nil
}
