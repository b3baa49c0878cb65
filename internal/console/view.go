package console

import (
	"fmt"
	"strings"

	"telecrm/internal/attendance"
	"telecrm/internal/calls/domain"
	leadsdomain "telecrm/internal/leads/domain"

	"github.com/charmbracelet/lipgloss"
)

const dateLayout = "2006-01-02"

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	switch m.screen {
	case screenLoading:
		b.WriteString(m.spinner.View() + " Checking session…\n")
	case screenLogin:
		b.WriteString(m.loginView())
	case screenQueue:
		b.WriteString(m.queueView())
	case screenWizard:
		b.WriteString(m.wizardView())
	case screenScript:
		b.WriteString(m.scriptScreen())
	}

	if m.status != "" {
		style := successStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m Model) header() string {
	parts := []string{titleStyle.Render("Telecaller Console")}
	if m.user != nil {
		parts = append(parts, m.user.DisplayName())
		parts = append(parts, attendanceLine(m.day))
	}
	return strings.Join(parts, mutedStyle.Render("  ·  "))
}

func attendanceLine(d attendance.Day) string {
	switch d.Status() {
	case attendance.StatusPunchedIn:
		return "Punched in " + d.PunchIn.Local().Format("15:04")
	case attendance.StatusPunchedOut:
		return fmt.Sprintf("Worked %s–%s", d.PunchIn.Local().Format("15:04"), d.PunchOut.Local().Format("15:04"))
	default:
		return warningStyle.Render("Not punched in")
	}
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Log in") + "\n\n")
	b.WriteString(m.email.View() + "\n")
	b.WriteString(m.password.View() + "\n")
	if m.busy {
		b.WriteString("\n" + m.spinner.View() + " Signing in…\n")
	}
	return cardStyle.Render(b.String())
}

func (m Model) tabs() string {
	counts := m.queue.Counts
	labels := map[leadsdomain.Bucket]int{
		leadsdomain.BucketAssigned:  counts.Assigned,
		leadsdomain.BucketFollowUp:  counts.FollowUp,
		leadsdomain.BucketConverted: counts.Converted,
	}

	current := m.queue.Bucket
	if current == leadsdomain.BucketPending {
		current = leadsdomain.BucketAssigned
	}

	tabs := make([]string, 0, len(leadsdomain.Buckets))
	for i, bucket := range leadsdomain.Buckets {
		label := fmt.Sprintf("%d %s (%d)", i+1, bucket.Label(), labels[bucket])
		if bucket == current {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) queueView() string {
	var b strings.Builder
	b.WriteString(m.tabs() + "\n")

	if m.queue.Loading {
		b.WriteString("\n" + m.spinner.View() + " Loading…\n")
		return b.String()
	}

	view := m.view()
	if view.Empty() {
		if m.queue.Err != nil {
			b.WriteString("\n" + warningStyle.Render("Could not load this list. Press r to retry.") + "\n")
		} else {
			b.WriteString("\n" + mutedStyle.Render("No leads in this bucket.") + "\n")
		}
		return b.String()
	}

	edit := m.deps.Names.State()
	idx := 0
	if view.Current != nil {
		b.WriteString(cardStyle.Render(labelStyle.Render("Current call") + "\n" + m.rowLine(*view.Current, idx == m.cursor, edit.LeadID)))
		b.WriteString("\n")
		idx++
		if len(view.Rows) > 0 {
			b.WriteString(labelStyle.Render("Up next") + "\n")
		}
	}
	for _, row := range view.Rows {
		b.WriteString(m.rowLine(row, idx == m.cursor, edit.LeadID) + "\n")
		idx++
	}

	if edit.Error != "" {
		b.WriteString(errorStyle.Render(edit.Error) + "\n")
	}
	return b.String()
}

func (m Model) rowLine(row leadsdomain.Row, selected bool, editing string) string {
	name := row.Lead.Name
	if !row.Lead.HasName() {
		name = mutedStyle.Render(leadsdomain.UnknownName)
	}
	if editing == row.Lead.ID {
		name = m.nameInput.View()
	}

	cols := []string{row.DisplayPhone, name}
	if row.Lead.Sheet.Name != "" {
		cols = append(cols, mutedStyle.Render(row.Lead.Sheet.Name))
	}
	if row.ShowFollowUp && row.Lead.FollowUpDate != nil {
		cols = append(cols, "follow up "+row.Lead.FollowUpDate.Local().Format(dateLayout))
	}

	var actions []string
	if row.Actions.Call {
		actions = append(actions, "d call")
	}
	if row.Actions.Close {
		actions = append(actions, "enter close")
	}
	if row.Actions.EditName {
		actions = append(actions, "e edit")
	}
	if len(actions) > 0 {
		cols = append(cols, mutedStyle.Render("["+strings.Join(actions, " · ")+"]"))
	}

	line := strings.Join(cols, "  ")
	if selected {
		return selectedRowStyle.Render(line)
	}
	return rowStyle.Render(line)
}

func (m Model) wizardView() string {
	f := m.form
	if f == nil {
		return ""
	}
	snap := f.session.Snapshot()

	var b strings.Builder
	lead := snap.Lead
	b.WriteString(labelStyle.Render("Close call") + "  " + lead.Phone)
	if lead.HasName() {
		b.WriteString("  " + lead.Name)
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  step %d of %d", stepNumber(snap.Step), stepCount(snap.Draft))) + "\n")

	if prev := snap.Previous; prev != nil {
		b.WriteString(mutedStyle.Render("Previous call: "+previousLine(*prev)) + "\n")
	}
	b.WriteString("\n")

	for _, fl := range f.fields() {
		label := fl.label()
		if fl == f.focus {
			label = focusedLabelStyle.Render("› " + label)
		} else {
			label = labelStyle.Render("  " + label)
		}
		b.WriteString(label + "\n")
		b.WriteString(f.fieldView(fl, snap.Draft) + "\n\n")
	}

	if snap.Blocker != "" {
		b.WriteString(mutedStyle.Render(snap.Blocker) + "\n")
	}
	if snap.Error != "" && snap.Error != snap.Blocker {
		b.WriteString(errorStyle.Render(snap.Error) + "\n")
	}
	submit := "Submit: ctrl+s"
	if snap.CanSubmit {
		submit = successStyle.Render(submit)
	} else {
		submit = mutedStyle.Render(submit + " (disabled)")
	}
	if f.submitting {
		submit = m.spinner.View() + " Closing call…"
	}
	b.WriteString(submit)
	return cardStyle.Render(b.String())
}

func (f *wizardForm) fieldView(fl field, d domain.Draft) string {
	switch fl {
	case fieldOutcome:
		return choice(d.Outcome == domain.OutcomeConnected, d.Outcome == domain.OutcomeNotConnected, "Connected (c)", "Not connected (n)")
	case fieldInterested:
		return choice(d.Interested == domain.AnswerYes, d.Interested == domain.AnswerNo, "Yes (y)", "No (n)")
	case fieldConverted:
		return choice(d.Converted == domain.AnswerYes, d.Converted == domain.AnswerNo, "Yes (y)", "No (n)")
	case fieldQuestions:
		return f.questions.View()
	case fieldRemark:
		return f.remark.View()
	case fieldDate:
		return f.date.View()
	case fieldQuestionPresets, fieldRemarkPresets:
		list := f.presets.Questions
		if fl == fieldRemarkPresets {
			list = f.presets.Remarks
		}
		lines := make([]string, 0, len(list))
		for i, phrase := range list {
			if fl == f.focus && i == f.presetCursor {
				lines = append(lines, selectedRowStyle.Render(domain.Bullet+phrase))
			} else {
				lines = append(lines, rowStyle.Render(domain.Bullet+phrase))
			}
		}
		return strings.Join(lines, "\n")
	default:
		return ""
	}
}

func choice(left, right bool, leftLabel, rightLabel string) string {
	mark := func(on bool, label string) string {
		if on {
			return activeTabStyle.Render("● " + label)
		}
		return tabStyle.Render("○ " + label)
	}
	return mark(left, leftLabel) + " " + mark(right, rightLabel)
}

func stepNumber(s domain.Step) int {
	switch s {
	case domain.StepConnected:
		return 2
	case domain.StepFollowUpReason:
		return 3
	default:
		return 1
	}
}

func stepCount(d domain.Draft) int {
	switch d.Path() {
	case domain.PathNotConnected, domain.PathUndecided:
		return 1
	case domain.PathConverted, domain.PathConnectedUnanswered:
		return 2
	default:
		return 3
	}
}

func previousLine(rec domain.Record) string {
	parts := []string{strings.ReplaceAll(string(rec.Outcome), "_", " ")}
	if rec.Converted != nil && *rec.Converted {
		parts = append(parts, "converted")
	}
	if rec.Remark != "" {
		parts = append(parts, fmt.Sprintf("%q", rec.Remark))
	}
	if rec.FollowUpDate != "" {
		parts = append(parts, "follow up "+rec.FollowUpDate)
	}
	if rec.ClosedAt != nil {
		parts = append(parts, "on "+rec.ClosedAt.Format("02 Jan 15:04"))
	}
	if rec.Telecaller != "" {
		parts = append(parts, "by "+rec.Telecaller)
	}
	return strings.Join(parts, ", ")
}

func (m Model) scriptScreen() string {
	if m.script.Empty() {
		return cardStyle.Render(mutedStyle.Render("No active script."))
	}
	return cardStyle.Render(labelStyle.Render(m.script.Title) + "\n\n" + m.scriptView.View())
}

func (m Model) help() string {
	switch m.screen {
	case screenLogin:
		return "tab switch field · enter log in · esc quit"
	case screenQueue:
		if m.deps.Names.State().Editing {
			return "enter save · esc cancel"
		}
		return "1-3/tab bucket · ↑↓ select · enter close call · d dial · e edit name · r refresh · p punch · s script · o log out · q quit"
	case screenWizard:
		return "tab next field · ctrl+n next step · ctrl+b back · ctrl+s submit · esc discard"
	case screenScript:
		return "↑↓ scroll · esc back"
	default:
		return "ctrl+c quit"
	}
}
