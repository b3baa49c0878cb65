package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	callsdomain "telecrm/internal/calls/domain"
	leadsdomain "telecrm/internal/leads/domain"
	"telecrm/platform/apperr"

	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func newQueueCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:       "queue [assigned|pending|follow-up|converted]",
		Short:     "List the leads of a bucket",
		Long:      "List the leads of a bucket in server order. In work queues the first lead is the current call.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"assigned", "pending", "follow-up", "converted"},
		RunE: r.oneShot(func(ctx context.Context, cmd *cobra.Command, args []string, app *App) error {
			if err := requireSession(app); err != nil {
				return err
			}
			bucket := leadsdomain.BucketAssigned
			if len(args) == 1 {
				b, ok := leadsdomain.ParseBucket(args[0])
				if !ok {
					return apperr.Validation(fmt.Sprintf("unknown bucket %q", args[0]))
				}
				bucket = b
			}

			app.Queue.Load(ctx, bucket)
			state := app.Queue.State()
			if state.Err != nil {
				return state.Err
			}
			printView(cmd.OutOrStdout(), leadsdomain.BuildView(bucket, state.Leads, app.Config.PhoneRegion))
			return nil
		}),
	}
}

func newCountsCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Show how many leads each bucket holds",
		Args:  cobra.NoArgs,
		RunE: r.oneShot(func(ctx context.Context, cmd *cobra.Command, _ []string, app *App) error {
			if err := requireSession(app); err != nil {
				return err
			}
			counts := app.Queue.RefreshCounts(ctx)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%d\n", leadsdomain.BucketAssigned.Label(), counts.Assigned)
			fmt.Fprintf(w, "%s\t%d\n", leadsdomain.BucketFollowUp.Label(), counts.FollowUp)
			fmt.Fprintf(w, "%s\t%d\n", leadsdomain.BucketConverted.Label(), counts.Converted)
			return w.Flush()
		}),
	}
}

func newRenameCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "rename LEAD_ID [NAME]",
		Short: "Set a lead's customer name",
		Long:  `Set a lead's customer name. An empty or missing name is stored as "unknown".`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: r.oneShot(func(ctx context.Context, cmd *cobra.Command, args []string, app *App) error {
			if err := requireSession(app); err != nil {
				return err
			}
			if err := app.Names.Begin(leadsdomain.Lead{ID: args[0]}); err != nil {
				return err
			}
			value := ""
			if len(args) == 2 {
				value = args[1]
			}
			if err := app.Names.SetValue(value); err != nil {
				return err
			}
			name, err := app.Names.Save(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Lead %s renamed to %q\n", args[0], name)
			return nil
		}),
	}
}

func newPreviousCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "previous LEAD_ID",
		Short: "Show the last recorded call of a lead",
		Args:  cobra.ExactArgs(1),
		RunE: r.oneShot(func(ctx context.Context, cmd *cobra.Command, args []string, app *App) error {
			if err := requireSession(app); err != nil {
				return err
			}
			rec, err := app.Telecaller.PreviousCall(ctx, args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No previous call")
				return nil
			}
			printRecord(cmd.OutOrStdout(), *rec)
			return nil
		}),
	}
}

func printView(out io.Writer, v leadsdomain.View) {
	fmt.Fprintln(out, v.Bucket.Label())
	if v.Empty() {
		fmt.Fprintln(out, "  No leads")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if v.Current != nil {
		fmt.Fprintln(w, "Current call")
		writeRow(w, *v.Current)
		if len(v.Rows) > 0 {
			fmt.Fprintln(w, "Up next")
		}
	}
	for _, row := range v.Rows {
		writeRow(w, row)
	}
	_ = w.Flush()
}

func writeRow(w io.Writer, row leadsdomain.Row) {
	name := leadsdomain.UnknownName
	if row.Lead.HasName() {
		name = row.Lead.Name
	}
	cols := []string{"  " + row.Lead.ID, name, row.DisplayPhone}
	if row.DialURI != "" {
		cols = append(cols, row.DialURI)
	}
	if row.ShowFollowUp && row.Lead.FollowUpDate != nil {
		cols = append(cols, "follow up "+row.Lead.FollowUpDate.Local().Format(dateLayout))
	}
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func printRecord(out io.Writer, rec callsdomain.Record) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Outcome\t%s\n", rec.Outcome)
	if rec.Interested != nil {
		fmt.Fprintf(w, "Interested\t%s\n", yesNo(*rec.Interested))
	}
	if rec.Converted != nil {
		fmt.Fprintf(w, "Converted\t%s\n", yesNo(*rec.Converted))
	}
	if rec.FollowUpDate != "" {
		fmt.Fprintf(w, "Follow up\t%s\n", rec.FollowUpDate)
	}
	if rec.ClosedAt != nil {
		fmt.Fprintf(w, "Closed at\t%s\n", rec.ClosedAt.Format("2006-01-02 15:04"))
	}
	if rec.Telecaller != "" {
		fmt.Fprintf(w, "By\t%s\n", rec.Telecaller)
	}
	_ = w.Flush()

	if rec.QuestionsAsked != "" {
		fmt.Fprintf(out, "Questions asked:\n%s\n", indent(rec.QuestionsAsked))
	}
	if rec.Remark != "" {
		fmt.Fprintf(out, "Remark:\n%s\n", indent(rec.Remark))
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
