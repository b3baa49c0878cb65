package console

import (
	"telecrm/internal/attendance"
	"telecrm/internal/auth"
	"telecrm/internal/calls/domain"
	"telecrm/internal/queue"
	"telecrm/internal/scripts"

	tea "github.com/charmbracelet/bubbletea"
)

type sessionCheckedMsg struct {
	user auth.User
	err  error
}

type loggedInMsg struct {
	user auth.User
	err  error
}

type loggedOutMsg struct {
	err error
}

// sessionExpiredMsg is sent when any API call other than the session check
// answered 401.
type sessionExpiredMsg struct{}

type listFetchedMsg struct {
	result queue.Result
}

// countsFetchedMsg reports that RefreshCounts returned. The counts are read
// back from the provider so a stale request cannot overwrite newer ones.
type countsFetchedMsg struct{}

// queueChangedMsg carries a provider snapshot pushed from outside the
// update loop, e.g. the refresh after a closed call.
type queueChangedMsg struct {
	state queue.State
}

type previousLoadedMsg struct {
	leadID string
	record *domain.Record
}

type submittedMsg struct {
	leadID string
	err    error
}

type renamedMsg struct {
	leadID string
	name   string
	err    error
}

type attendanceMsg struct {
	day attendance.Day
	err error
}

type punchedMsg struct {
	day attendance.Day
	err error
}

type scriptMsg struct {
	script scripts.Script
	err    error
}

func (m Model) checkSession() tea.Cmd {
	return func() tea.Msg {
		user, err := m.deps.Auth.Me(m.ctx)
		return sessionCheckedMsg{user: user, err: err}
	}
}

func (m Model) login(email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := m.deps.Auth.Login(m.ctx, email, password)
		return loggedInMsg{user: user, err: err}
	}
}

func (m Model) logout() tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg{err: m.deps.Auth.Logout(m.ctx)}
	}
}

func (m Model) fetchList(t queue.Ticket) tea.Cmd {
	return func() tea.Msg {
		return listFetchedMsg{result: m.deps.Queue.Fetch(m.ctx, t)}
	}
}

func (m Model) fetchCounts() tea.Cmd {
	return func() tea.Msg {
		m.deps.Queue.RefreshCounts(m.ctx)
		return countsFetchedMsg{}
	}
}

func (m Model) loadPrevious(f *wizardForm) tea.Cmd {
	return func() tea.Msg {
		rec := f.session.LoadPrevious(m.ctx)
		return previousLoadedMsg{leadID: f.session.Lead().ID, record: rec}
	}
}

func (m Model) submit(f *wizardForm) tea.Cmd {
	return func() tea.Msg {
		err := f.session.Submit(m.ctx)
		return submittedMsg{leadID: f.session.Lead().ID, err: err}
	}
}

func (m Model) saveName(leadID string) tea.Cmd {
	return func() tea.Msg {
		name, err := m.deps.Names.Save(m.ctx)
		return renamedMsg{leadID: leadID, name: name, err: err}
	}
}

func (m Model) fetchAttendance() tea.Cmd {
	return func() tea.Msg {
		day, err := m.deps.Attendance.Today(m.ctx)
		return attendanceMsg{day: day, err: err}
	}
}

func (m Model) punch(action attendance.Action) tea.Cmd {
	return func() tea.Msg {
		day, err := m.deps.Attendance.Punch(m.ctx, action)
		return punchedMsg{day: day, err: err}
	}
}

func (m Model) fetchScript() tea.Cmd {
	return func() tea.Msg {
		s, err := m.deps.Scripts.Active(m.ctx)
		return scriptMsg{script: s, err: err}
	}
}
